/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: datamanager_test.go
Descripcion: Pruebas del data manager: spill forzado por umbral,
             drenado ordenado de fin de fase y limpieza de archivos
             temporales al cerrar el stream.
*/

package shuffle

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chost/internal/record"
)

func spillFilesIn(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestSpillForcedExternalSort(t *testing.T) {
	// maxDataSize chico fuerza spills durante el almacenado; el
	// drenado final debe ser no decreciente y no dejar archivos
	dir := t.TempDir()
	d := NewDataManager(dir, record.TagInteger, 4, 16)

	vals := []int32{7, 3, 1, 9, 12, -4, 0, 5, 5, 2, 33, 8, -1, 6, 4, 10, 11, 13, -7, 20}
	for _, v := range vals {
		require.True(t, d.Store(record.NewInteger(v)))
	}

	stm := d.IntoSortedStream()
	require.NotNil(t, stm)
	var got []int32
	for {
		rec, ok := stm.Get()
		if !ok {
			break
		}
		got = append(got, rec.(*record.Integer).Value)
	}
	require.Len(t, got, len(vals))
	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, got[i-1], got[i])
	}
	stm.Close()
	require.Zero(t, spillFilesIn(t, dir), "sin spills residuales tras cerrar el stream")
}

func TestStoreConcurrente(t *testing.T) {
	// Varios hilos de recepcion almacenan a la vez; el mutex del
	// buffer debe conservar todos los registros
	dir := t.TempDir()
	d := NewDataManager(dir, record.TagInteger, 50, 16)

	const workers = 8
	const perWorker = 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(base int32) {
			defer wg.Done()
			for i := int32(0); i < perWorker; i++ {
				d.Store(record.NewInteger(base + i))
			}
		}(int32(w * 1000))
	}
	wg.Wait()

	stm := d.IntoSortedStream()
	require.NotNil(t, stm)
	count := 0
	for {
		if _, ok := stm.Get(); !ok {
			break
		}
		count++
	}
	require.Equal(t, workers*perWorker, count)
	stm.Close()
}

func TestPresortOff(t *testing.T) {
	dir := t.TempDir()
	d := NewDataManager(dir, record.TagInteger, 100, 16)
	d.SetPresort(false)
	require.True(t, d.Store(record.NewInteger(1)))
	require.Nil(t, d.IntoSortedStream(), "sin presort no hay stream ordenado")

	stm := d.IntoUnsortedStream()
	require.NotNil(t, stm)
	rec, ok := stm.Get()
	require.True(t, ok)
	require.Equal(t, "1", rec.String())
	_, ok = stm.Get()
	require.False(t, ok)
	stm.Close()
}
