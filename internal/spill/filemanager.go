/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: filemanager.go
Descripcion: Administrador de archivos temporales de spill de un job.
             Crea archivos con nombre aleatorio en el directorio de
             trabajo, persiste vectores de registros y ejecuta el
             merge sort externo con fan-in acotado antes de entregar
             un stream ordenado.
*/

package spill

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chost/internal/config"
	"chost/internal/record"
	"chost/internal/utils"
)

// Reintentos al crear un archivo de spill antes de rendirse
const openSpillAttempts = 5

// LocalFileManager es dueño de los archivos de spill que crea hasta
// transferirlos a un stream ordenado o sin orden
type LocalFileManager struct {
	dir   string
	tag   byte
	way   int
	files []string
}

// NewLocalFileManager - Constructor del administrador de spills
// Entrada: dir - directorio de trabajo del job, tag - tipo de registro,
//
//	way - fan-in del merge sort externo
func NewLocalFileManager(dir string, tag byte, way int) *LocalFileManager {
	if way < 2 {
		way = config.MergeSortWay
	}
	return &LocalFileManager{dir: dir, tag: tag, way: way}
}

// openSpill - Crea un nuevo archivo de spill y lo registra en la lista
// Salida: archivo abierto con writer bufferizado, o error tras agotar
//
//	los reintentos
// Descripcion: El nombre es un punto seguido de un token aleatorio de
//
//	8 caracteres. Un fallo transitorio espera y reintenta; el
//	fallo persistente se reporta al llamador.
func (m *LocalFileManager) openSpill() (*os.File, *bufio.Writer, error) {
	for attempt := 1; ; attempt++ {
		path := filepath.Join(m.dir, "."+utils.RandomString(config.RandomFileNameLength))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			m.files = append(m.files, path)
			return f, bufio.NewWriter(f), nil
		}
		if attempt >= openSpillAttempts {
			return nil, nil, fmt.Errorf("spill: no se pudo crear archivo temporal: %w", err)
		}
		utils.LogJSON("ERROR", "Fallo al crear archivo de spill", map[string]interface{}{"dir": m.dir, "error": err.Error()})
		time.Sleep(config.OpenSpillRetryInterval)
	}
}

// dump - Escribe todos los registros a un nuevo archivo de spill
func (m *LocalFileManager) dump(recs []record.Record) error {
	f, w, err := m.openSpill()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := rec.WriteTo(w); err != nil {
			f.Close()
			return fmt.Errorf("spill: fallo escribiendo registro: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("spill: fallo escribiendo registro: %w", err)
	}
	return f.Close()
}

// DumpSorted - Persiste un lote ya ordenado por clave
// Entrada: recs - registros en orden no decreciente
// Salida: error si la escritura fallo
func (m *LocalFileManager) DumpSorted(recs []record.Record) error {
	return m.dump(recs)
}

// DumpUnsorted - Persiste un lote sin garantia de orden
func (m *LocalFileManager) DumpUnsorted(recs []record.Record) error {
	return m.dump(recs)
}

// unitMerge - Merge de k vias (k <= way) de una ventana de archivos
// Entrada: window - archivos a consumir (el stream los borra)
// Salida: error si fallo la escritura del spill resultante
func (m *LocalFileManager) unitMerge(window []string) error {
	stm := newSortedStream(m.tag, window)
	defer stm.Close()
	f, w, err := m.openSpill()
	if err != nil {
		return err
	}
	for {
		rec, ok := stm.Get()
		if !ok {
			break
		}
		if err := rec.WriteTo(w); err != nil {
			f.Close()
			return fmt.Errorf("spill: fallo en merge sort: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("spill: fallo en merge sort: %w", err)
	}
	return f.Close()
}

// mergeSort - Merge sort externo con fan-in acotado
// Salida: error si alguna fase fallo
// Descripcion: Fase completa: mientras haya >= way*way archivos, funde
//
//	los way mas recientes en uno nuevo. Fase grid: con way < L <
//	way*way funde ventanas desde el extremo mas viejo dejando el
//	resto intacto, de modo que queden exactamente way archivos.
//	Con L <= way no hay nada que hacer: el heap del stream
//	ordenado los funde directo.
func (m *LocalFileManager) mergeSort() error {
	way := m.way
	for len(m.files) >= way*way {
		window := append([]string(nil), m.files[len(m.files)-way:]...)
		m.files = m.files[:len(m.files)-way]
		if err := m.unitMerge(window); err != nil {
			return err
		}
	}
	l := len(m.files)
	if l > way {
		files := m.files
		m.files = nil
		full := (l - way) / (way - 1)
		remain := (l-way)%(way-1) + 1
		idx := 0
		for i := 0; i < full; i++ {
			if err := m.unitMerge(files[idx : idx+way]); err != nil {
				m.files = append(m.files, files[idx+way:]...)
				return err
			}
			idx += way
		}
		if err := m.unitMerge(files[idx : idx+remain]); err != nil {
			m.files = append(m.files, files[idx+remain:]...)
			return err
		}
		idx += remain
		m.files = append(m.files, files[idx:]...)
	}
	return nil
}

// IntoSortedStream - Corre el merge sort y entrega el stream ordenado
// Salida: stream con todos los spills restantes (nil si no hay datos),
//
//	o error si el merge sort fallo
// Descripcion: Transfiere la posesion de todos los archivos al stream;
//
//	el administrador queda vacio.
func (m *LocalFileManager) IntoSortedStream() (*SortedStream, error) {
	if err := m.mergeSort(); err != nil {
		return nil, err
	}
	files := m.files
	m.files = nil
	stm := newSortedStream(m.tag, files)
	if !stm.Valid() {
		stm.Close()
		return nil, nil
	}
	return stm, nil
}

// IntoUnsortedStream - Entrega todos los spills como stream sin orden
// Salida: stream sin orden, o nil si no hay archivos
func (m *LocalFileManager) IntoUnsortedStream() *UnsortedStream {
	files := m.files
	m.files = nil
	if len(files) == 0 {
		return nil
	}
	return newUnsortedStream(m.tag, files)
}

// SpillCount - Cantidad de archivos de spill actualmente en posesion
func (m *LocalFileManager) SpillCount() int {
	return len(m.files)
}

// Clear - Borra todos los archivos de spill que aun posee
func (m *LocalFileManager) Clear() {
	for _, path := range m.files {
		os.Remove(path)
	}
	m.files = nil
}
