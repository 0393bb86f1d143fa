/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: splitter.go
Descripcion: Produce splits de entrada alineados a lineas de hasta
             SplitSize bytes desde un archivo local. Thread-safe:
             varios mappers pueden pedir splits concurrentemente.
             Soporta archivos .gz de forma transparente.
*/

package source

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"chost/internal/config"
	"chost/internal/utils"
)

// Splitter corta un archivo en bloques terminados en salto de linea
type Splitter struct {
	mu        sync.Mutex
	f         *os.File
	gz        *gzip.Reader
	r         io.Reader
	buf       []byte
	buffered  int
	eof       bool
	splitSize int
}

// NewSplitter - Constructor del splitter
// Entrada: splitSize - tamaño maximo de split (<=0 usa el default)
func NewSplitter(splitSize int) *Splitter {
	if splitSize <= 0 {
		splitSize = config.SplitSize
	}
	return &Splitter{buf: make([]byte, splitSize), splitSize: splitSize}
}

// Open - Abre el archivo de datos
// Entrada: path - ruta del archivo (si termina en .gz se descomprime)
// Salida: error si el archivo no se pudo abrir
func (s *Splitter) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("splitter: no se pudo abrir %s: %w", path, err)
	}
	s.f = f
	s.r = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			s.f = nil
			s.r = nil
			return fmt.Errorf("splitter: %s no es gzip valido: %w", path, err)
		}
		s.gz = gz
		s.r = gz
	}
	return nil
}

// IsValid - True mientras el archivo siga abierto. Next lo cierra al
// observar el agotamiento o una linea demasiado larga, no antes.
func (s *Splitter) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r != nil
}

// closeLocked cierra el archivo y descarta el estado; requiere mutex
func (s *Splitter) closeLocked() {
	if s.gz != nil {
		s.gz.Close()
		s.gz = nil
	}
	if s.f != nil {
		s.f.Close()
		s.f = nil
	}
	s.r = nil
	s.buffered = 0
	s.eof = false
}

// Next - Siguiente split alineado a lineas
// Salida: split y true, o "" y false al agotar o fallar
// Descripcion: Rellena el buffer hasta splitSize y busca el ultimo
//
//	salto de linea desde el final; retorna hasta ahi y conserva la
//	cola para la proxima llamada. En EOF con cola pendiente la
//	retorna una vez con un salto de linea agregado. Una linea mas
//	larga que splitSize no esta soportada: cierra y retorna false.
func (s *Splitter) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return "", false
	}

	read := 0
	for s.buffered < s.splitSize && !s.eof {
		n, err := s.r.Read(s.buf[s.buffered:s.splitSize])
		s.buffered += n
		read += n
		if err != nil {
			s.eof = true
		}
	}

	if read == 0 {
		if s.buffered == 0 {
			s.closeLocked()
			return "", false
		}
		res := string(s.buf[:s.buffered]) + "\n"
		s.closeLocked()
		return res, true
	}

	for i := s.buffered - 1; i >= 0; i-- {
		if s.buf[i] == '\n' {
			res := string(s.buf[:i+1])
			copy(s.buf, s.buf[i+1:s.buffered])
			s.buffered -= i + 1
			return res, true
		}
	}

	// Sin salto de linea: en EOF es la cola final; con el buffer
	// lleno es una linea mas larga que el split, no soportada
	if s.eof {
		res := string(s.buf[:s.buffered]) + "\n"
		s.closeLocked()
		return res, true
	}

	utils.LogJSON("ERROR", "Linea excede el tamaño de split, archivo no consumido por completo", map[string]interface{}{"split_size": s.splitSize})
	s.closeLocked()
	return "", false
}
