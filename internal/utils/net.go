/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: net.go
Descripcion: Primitivas de red del protocolo de control. Implementa
             envio/recepcion de bytes sueltos, strings y archivos con
             prefijo de longitud (int64 little-endian) sobre net.Conn.
*/

package utils

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// SendByte - Envia un unico byte por el socket
// Entrada: w - conexion, b - byte a enviar
// Salida: error si falla la escritura
func SendByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// ReceiveByte - Recibe un unico byte del socket
// Entrada: r - conexion
// Salida: byte recibido y error si falla la lectura
func ReceiveByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// SendString - Envia bytes con prefijo de longitud int64
// Entrada: w - conexion, data - contenido a enviar
// Salida: error si falla la escritura
// Descripcion: Escribe primero el tamaño como int64 little-endian y
//
//	luego el contenido. Tamaño 0 es valido y marca fin de datos
//	en el servicio de splits.
func SendString(w io.Writer, data []byte) error {
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(data)))
	if _, err := w.Write(size[:]); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err := w.Write(data)
	return err
}

// ReceiveString - Recibe bytes con prefijo de longitud int64
// Entrada: r - conexion
// Salida: contenido recibido y error si falla la lectura
// Descripcion: Lee el tamaño int64 little-endian y luego esa cantidad
//
//	de bytes. Un tamaño <= 0 retorna slice vacio (fin de datos).
func ReceiveString(r io.Reader) ([]byte, error) {
	var size [8]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	n := int64(binary.LittleEndian.Uint64(size[:]))
	if n <= 0 {
		return nil, nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// SendFile - Envia el contenido de un archivo con prefijo de longitud
// Entrada: w - conexion, path - ruta del archivo local
// Salida: error si falla lectura o escritura
func SendFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("no se pudo leer %s: %w", path, err)
	}
	return SendString(w, data)
}

// ReceiveFile - Recibe un archivo con prefijo de longitud y lo persiste
// Entrada: r - conexion, path - ruta destino en disco
// Salida: error si falla recepcion o escritura
func ReceiveFile(r io.Reader, path string) error {
	data, err := ReceiveString(r)
	if err != nil {
		return fmt.Errorf("no se pudo recibir %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("no se pudo escribir %s: %w", path, err)
	}
	return nil
}
