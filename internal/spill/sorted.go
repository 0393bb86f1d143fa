/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: sorted.go
Descripcion: Stream ordenado sobre un conjunto de archivos de spill.
             Mantiene un min-heap con el registro cabeza de cada
             archivo; cada Get entrega el minimo global y rellena
             desde el archivo correspondiente (merge de k vias).
             El stream es dueño de los archivos y los borra al cerrar.
*/

package spill

import (
	"bufio"
	"container/heap"
	"os"

	"chost/internal/record"
)

// fileEntry es un archivo participante del merge con su registro cabeza
type fileEntry struct {
	rec record.Record
	r   *bufio.Reader
	f   *os.File
}

// fileHeap implementa heap.Interface ordenando por el registro cabeza
type fileHeap []*fileEntry

func (h fileHeap) Len() int            { return len(h) }
func (h fileHeap) Less(i, j int) bool  { return h[i].rec.Less(h[j].rec) }
func (h fileHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *fileHeap) Push(x interface{}) { *h = append(*h, x.(*fileEntry)) }
func (h *fileHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// SortedStream entrega los registros de sus archivos en orden
// no decreciente bajo la relacion Less del registro
type SortedStream struct {
	tag   byte
	files []string
	heap  fileHeap
}

// newSortedStream - Construye el stream tomando posesion de los archivos
// Entrada: tag - tag del tipo de registro, files - archivos de spill
// Salida: stream con el heap inicializado
// Descripcion: Cada archivo aporta su registro cabeza al heap; los
//
//	archivos vacios o ilegibles se cierran de inmediato (igual se
//	borran al cerrar el stream).
func newSortedStream(tag byte, files []string) *SortedStream {
	s := &SortedStream{tag: tag, files: files}
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		r := bufio.NewReader(f)
		rec, ok := readRecord(tag, r)
		if !ok {
			f.Close()
			continue
		}
		s.heap = append(s.heap, &fileEntry{rec: rec, r: r, f: f})
	}
	heap.Init(&s.heap)
	return s
}

// readRecord - Decodifica el siguiente registro de un spill
// Salida: registro y true, o false al agotar el archivo
func readRecord(tag byte, r *bufio.Reader) (record.Record, bool) {
	rec, err := record.New(tag)
	if err != nil {
		return nil, false
	}
	if err := rec.ReadFrom(r); err != nil {
		return nil, false
	}
	return rec, true
}

// Valid - True si el stream tiene al menos un registro pendiente
func (s *SortedStream) Valid() bool {
	return len(s.heap) > 0
}

// Get - Siguiente registro en orden no decreciente
// Salida: registro y true, o false si el stream se agoto
func (s *SortedStream) Get() (record.Record, bool) {
	if len(s.heap) == 0 {
		return nil, false
	}
	top := s.heap[0]
	rec := top.rec
	if next, ok := readRecord(s.tag, top.r); ok {
		top.rec = next
		heap.Fix(&s.heap, 0)
	} else {
		top.f.Close()
		heap.Pop(&s.heap)
	}
	return rec, true
}

// Close - Cierra los archivos restantes y los borra del disco
func (s *SortedStream) Close() {
	for _, e := range s.heap {
		e.f.Close()
	}
	s.heap = nil
	for _, path := range s.files {
		os.Remove(path)
	}
	s.files = nil
}
