/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: loader.go
Descripcion: Carga de jobs en runtime. El binario del job es un plugin
             de Go que exporta el simbolo DoJob con firma
             func(*job.Context) bool.
*/

package job

import (
	"fmt"
	"plugin"
)

// Load - Carga el binario del job y resuelve DoJob
// Entrada: path - ruta del plugin (.so) recibido o local
// Salida: funcion del job o error si falta la libreria o el simbolo
func Load(path string) (Func, error) {
	lib, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("job: no se pudo cargar la libreria %s: %w", path, err)
	}
	sym, err := lib.Lookup("DoJob")
	if err != nil {
		return nil, fmt.Errorf("job: la libreria no exporta DoJob: %w", err)
	}
	fn, ok := sym.(func(*Context) bool)
	if !ok {
		return nil, fmt.Errorf("job: DoJob tiene una firma invalida")
	}
	return fn, nil
}
