/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: datamanager.go
Descripcion: Buffer en memoria de los registros propios del nodo con
             spill a disco al llenarse. Con presort activo ordena el
             buffer antes de cada spill para que el drenado final sea
             un merge sort externo verdadero.
*/

package shuffle

import (
	"sort"
	"sync"

	"chost/internal/record"
	"chost/internal/spill"
	"chost/internal/utils"
)

// DataManager acumula los registros que pertenecen a este nodo.
// Los hilos de recepcion y el mapper escriben concurrentemente a
// traves de Store; el mutex serializa el acceso al buffer.
type DataManager struct {
	mu          sync.Mutex
	presort     bool
	maxDataSize int
	data        []record.Record
	files       *spill.LocalFileManager
}

// NewDataManager - Constructor del data manager
// Entrada: dir - directorio de trabajo, tag - tipo de registro,
//
//	maxDataSize - registros en memoria antes de spill,
//	way - fan-in del merge sort externo
func NewDataManager(dir string, tag byte, maxDataSize, way int) *DataManager {
	return &DataManager{
		presort:     true,
		maxDataSize: maxDataSize,
		files:       spill.NewLocalFileManager(dir, tag, way),
	}
}

// Store - Acepta un registro y toma posesion de el
// Entrada: rec - registro a almacenar
// Salida: false si un spill fallo
// Descripcion: Al llenarse el buffer lo ordena (si presort esta
//
//	activo), lo vuelca a un nuevo archivo de spill y lo vacia.
func (d *DataManager) Store(rec record.Record) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = append(d.data, rec)
	if len(d.data) >= d.maxDataSize {
		return d.spillLocked()
	}
	return true
}

// spillLocked vuelca el buffer actual; requiere el mutex tomado
func (d *DataManager) spillLocked() bool {
	var err error
	if d.presort {
		sort.Slice(d.data, func(i, j int) bool { return d.data[i].Less(d.data[j]) })
		err = d.files.DumpSorted(d.data)
	} else {
		err = d.files.DumpUnsorted(d.data)
	}
	d.data = d.data[:0]
	if err != nil {
		utils.LogJSON("ERROR", "Fallo el spill del buffer", map[string]interface{}{"error": err.Error()})
		return false
	}
	return true
}

// SetPresort - Activa o desactiva el ordenado previo al spill
// Descripcion: Solo debe llamarse entre fases: true durante map,
//
//	false durante la agregacion del reduce.
func (d *DataManager) SetPresort(presort bool) {
	d.mu.Lock()
	d.presort = presort
	d.mu.Unlock()
}

// IntoSortedStream - Drena todo a un stream ordenado
// Salida: stream ordenado, o nil si presort esta apagado, no hay
//
//	datos, o el merge sort fallo
// Descripcion: Vuelca el residuo del buffer (ordenado) y delega el
//
//	merge sort externo al administrador de archivos.
func (d *DataManager) IntoSortedStream() *spill.SortedStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.presort {
		return nil
	}
	if len(d.data) > 0 {
		if !d.spillLocked() {
			return nil
		}
	}
	stm, err := d.files.IntoSortedStream()
	if err != nil {
		utils.LogJSON("ERROR", "Fallo el merge sort externo", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return stm
}

// IntoUnsortedStream - Drena todo a un stream sin orden
// Salida: stream sin orden, o nil si no hay datos
func (d *DataManager) IntoUnsortedStream() *spill.UnsortedStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.data) > 0 {
		if !d.spillLocked() {
			return nil
		}
	}
	return d.files.IntoUnsortedStream()
}

// Size - Registros actualmente en el buffer (para tests y metricas)
func (d *DataManager) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.data)
}

// Clear - Libera buffer y archivos de spill pendientes
func (d *DataManager) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = nil
	d.files.Clear()
}
