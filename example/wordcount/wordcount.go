/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: wordcount.go
Descripcion: Job de demostracion: conteo distribuido de palabras.
             Se compila como plugin (go build -buildmode=plugin) y
             exporta DoJob. El mapper emite tuplas (palabra, 1)
             particionadas por hash; el reducer agrega corridas de
             claves iguales del stream ordenado hacia el master.
*/

package main

import (
	"strings"

	"chost/internal/job"
	"chost/internal/record"
	"chost/internal/shuffle"
	"chost/internal/spill"
)

// Tag del registro del shuffle: Tuple(String, Integer)
var wordTag = record.TupleTag(record.TagString, record.TagInteger)

// mapFun - Tokeniza un split y emite (palabra, 1) por cada palabra
func mapFun(split string, sm *shuffle.StreamManager) {
	res := record.NewTuple(record.NewString(""), record.NewInteger(1))
	for _, word := range strings.Fields(split) {
		res.First.(*record.String).Set(word)
		sm.Push(res, shuffle.HashPartitioner{})
	}
}

// reduceFun - Agrega corridas de claves iguales del stream ordenado
// Descripcion: El stream llega ordenado por palabra, asi que las
//
//	repeticiones son contiguas: se acumulan con Merge y cada
//	cambio de clave emite el agregado a la particion del master.
func reduceFun(sorted *spill.SortedStream, sm *shuffle.StreamManager) {
	var acc record.Record
	for {
		e, ok := sorted.Get()
		if !ok {
			break
		}
		if acc == nil {
			acc = e
			continue
		}
		if acc.Equal(e) {
			acc.Merge(e)
		} else {
			sm.Push(acc, shuffle.ZeroPartitioner{})
			acc = e
		}
	}
	if acc != nil {
		sm.Push(acc, shuffle.ZeroPartitioner{})
	}
}

// DoJob - Simbolo exportado que carga el runtime
// Entrada: ctx - contexto del job
// Salida: true si el job completo en este nodo
func DoJob(ctx *job.Context) bool {
	return job.SimpleJob(ctx, wordTag, mapFun, reduceFun)
}

// main no se usa: el job se compila con -buildmode=plugin
func main() {}
