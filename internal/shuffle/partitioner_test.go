/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: partitioner_test.go
Descripcion: Pruebas de los particionadores: metodo del resto con
             valor absoluto, caso especial de INT_MIN y particionador
             constante cero.
*/

package shuffle

import (
	"math"
	"testing"
)

func TestHashPartitioner(t *testing.T) {
	cases := []struct {
		name     string
		hash     int32
		size     int
		expected int
	}{
		{"Positivo", 7, 3, 1},
		{"Negativo Usa Valor Absoluto", -7, 3, 1},
		{"Cero", 0, 5, 0},
		{"IntMin Va Al Master", math.MinInt32, 4, 0},
		{"Cluster De Uno", 12345, 1, 0},
	}
	p := HashPartitioner{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Partition(tc.hash, tc.size); got != tc.expected {
				t.Errorf("Partition(%d, %d) = %d, esperado %d", tc.hash, tc.size, got, tc.expected)
			}
		})
	}
}

func TestHashPartitionerRange(t *testing.T) {
	// Todo hash debe caer en [0, size)
	p := HashPartitioner{}
	for _, h := range []int32{math.MinInt32, math.MaxInt32, -1, 0, 1, 31, -31} {
		for size := 1; size <= 5; size++ {
			got := p.Partition(h, size)
			if got < 0 || got >= size {
				t.Errorf("Partition(%d, %d) = %d fuera de rango", h, size, got)
			}
		}
	}
}

func TestZeroPartitioner(t *testing.T) {
	p := ZeroPartitioner{}
	for _, h := range []int32{math.MinInt32, -5, 0, 99} {
		if got := p.Partition(h, 8); got != 0 {
			t.Errorf("Partition(%d, 8) = %d, esperado 0", h, got)
		}
	}
}
