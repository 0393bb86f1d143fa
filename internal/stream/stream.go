/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: stream.go
Descripcion: Streams de objetos sobre TCP para el shuffle peer a peer.
             Cada registro viaja como <tag><payload>; el tag invalido
             0xFF sin payload marca fin de datos en esa direccion sin
             cerrar el socket (el peer simetrico aun puede enviarnos
             su propio centinela).
*/

package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"chost/internal/record"
)

// ErrEndOfStream señala que el lado remoto envio el centinela 0xFF.
// El socket sigue abierto; un StartReceive posterior puede reutilizar
// el mismo stream de entrada en la fase de reduce.
var ErrEndOfStream = errors.New("stream: fin de datos")

// ObjectOutputStream es el lado de envio hacia un peer
type ObjectOutputStream struct {
	conn net.Conn
}

// Dial - Abre un stream de salida hacia un peer
// Entrada: addr - direccion "host:puerto" del peer
// Salida: stream abierto o error si la conexion fallo
func Dial(addr string) (*ObjectOutputStream, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("stream: no se pudo conectar a %s: %w", addr, err)
	}
	return &ObjectOutputStream{conn: conn}, nil
}

// Send - Envia un registro como <tag><payload>
// Entrada: rec - registro a serializar
// Salida: error si falla la escritura
func (s *ObjectOutputStream) Send(rec record.Record) error {
	if _, err := s.conn.Write([]byte{rec.Tag()}); err != nil {
		return err
	}
	return rec.WriteTo(s.conn)
}

// Stop - Envia el centinela sin cerrar el socket
// Descripcion: Marca fin de datos en esta direccion. Se usa en la
//
//	barrera map -> reduce: el peer termina de drenar su lado de
//	recepcion mientras este nodo prepara la siguiente fase.
func (s *ObjectOutputStream) Stop() error {
	_, err := s.conn.Write([]byte{record.TagInvalid})
	return err
}

// Close - Envia el centinela y cierra la conexion
func (s *ObjectOutputStream) Close() error {
	s.conn.Write([]byte{record.TagInvalid})
	return s.conn.Close()
}

// ObjectInputStream es el lado de recepcion desde un peer
type ObjectInputStream struct {
	conn net.Conn
	r    *bufio.Reader
}

// NewInputStream - Envuelve una conexion aceptada
func NewInputStream(conn net.Conn) *ObjectInputStream {
	return &ObjectInputStream{conn: conn, r: bufio.NewReader(conn)}
}

// Recv - Lee el siguiente registro del stream
// Salida: registro decodificado; ErrEndOfStream si llego el centinela;
//
//	io.EOF u otro error si el socket se cerro o fallo
// Descripcion: Los registros son auto-descriptivos: el tag determina
//
//	la variante a decodificar, por lo que el orden de streams
//	entrantes no importa.
func (s *ObjectInputStream) Recv() (record.Record, error) {
	tag, err := s.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag == record.TagInvalid {
		return nil, ErrEndOfStream
	}
	rec, err := record.New(tag)
	if err != nil {
		return nil, err
	}
	if err := rec.ReadFrom(s.r); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return rec, nil
}

// Close - Cierra el socket de entrada
func (s *ObjectInputStream) Close() error {
	return s.conn.Close()
}
