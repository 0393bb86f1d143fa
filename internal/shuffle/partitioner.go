/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: partitioner.go
Descripcion: Particionadores del shuffle. Funcion pura que mapea
             (hash del registro, tamaño del cluster) al indice del
             nodo dueño. Pluggable por interfaz.
*/

package shuffle

import "math"

// Partitioner decide el nodo destino de un registro
type Partitioner interface {
	// Partition mapea un hash al indice de nodo [0, clusterSize)
	Partition(hash int32, clusterSize int) int
}

// HashPartitioner reparte por valor absoluto del hash modulo N.
// math.MinInt32 no tiene valor absoluto representable; va al nodo 0.
type HashPartitioner struct{}

func (HashPartitioner) Partition(hash int32, clusterSize int) int {
	if hash == math.MinInt32 {
		return 0
	}
	if hash < 0 {
		hash = -hash
	}
	return int(hash) % clusterSize
}

// ZeroPartitioner manda todo al master; lo usa la fase de reduce para
// que la agregacion final quede en el nodo 0
type ZeroPartitioner struct{}

func (ZeroPartitioner) Partition(hash int32, clusterSize int) int {
	return 0
}
