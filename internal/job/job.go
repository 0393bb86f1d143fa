/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: job.go
Descripcion: Contrato de los jobs de usuario y driver de dos fases.
             El Context entrega al job los peers, la fuente de splits,
             las rutas y los flags; SimpleJob implementa el ciclo
             map -> barrera -> reduce -> barrera -> dump reutilizando
             un unico stream manager (mapper y reducer con el mismo
             tipo de salida).
*/

package job

import (
	"sync"

	"chost/internal/config"
	"chost/internal/shuffle"
	"chost/internal/source"
	"chost/internal/spill"
	"chost/internal/utils"
)

// Context es el parametro del doJob del usuario
type Context struct {
	Peers               config.IPConfig      // Lista de peers, este nodo primero
	Source              source.SourceManager // Fuente de splits de entrada
	OutputPath          string               // Archivo de salida (solo master)
	WorkingDir          string               // Directorio de trabajo del job
	JobName             string               // Nombre del job
	IsServer            bool                 // True en el master
	SupportsMultiMapper bool                 // Habilita NumMapper mappers
	Cfg                 config.Config        // Configuracion del proceso
}

// Func es la firma del simbolo DoJob que exporta un job cargable
type Func func(ctx *Context) bool

// Mapper procesa un split de entrada y emite registros al shuffle
type Mapper func(split string, sm *shuffle.StreamManager)

// Reducer consume el stream ordenado y emite agregados al shuffle
type Reducer func(sorted *spill.SortedStream, sm *shuffle.StreamManager)

// SimpleJob - Driver de un job cuyo mapper y reducer emiten el mismo tipo
// Entrada: ctx - contexto del job, tag - tipo de registro del shuffle,
//
//	mapFn / reduceFn - funciones del usuario
// Salida: true si el job local completo; el master ademas exige el
//
//	volcado del archivo de salida
// Descripcion: (i) arma la malla; (ii) map sobre los splits de la
//
//	fuente; (iii) barrera stop + drain; (iv) drenado ordenado;
//	(v) reduce hacia la particion del master; (vi) barrera
//	finalize + drain; (vii) dump de texto en el master.
func SimpleJob(ctx *Context, tag byte, mapFn Mapper, reduceFn Reducer) bool {
	sm := shuffle.NewStreamManager(ctx.Cfg, ctx.Peers, ctx.WorkingDir, tag)
	if !sm.IsConnected() {
		utils.LogJSON("ERROR", "La malla del shuffle no se pudo establecer", map[string]interface{}{"job": ctx.JobName})
		return false
	}
	defer sm.Close()

	sm.StartReceive()
	if !sm.IsReceiving() {
		utils.LogJSON("ERROR", "No se pudieron iniciar los hilos de recepcion", map[string]interface{}{"job": ctx.JobName})
		return false
	}

	// Fase map
	if ctx.SupportsMultiMapper {
		var wg sync.WaitGroup
		for i := 0; i < ctx.Cfg.NumMapper; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					split, ok := ctx.Source.Poll()
					if !ok {
						return
					}
					mapFn(split, sm)
				}
			}()
		}
		wg.Wait()
	} else {
		for {
			split, ok := ctx.Source.Poll()
			if !ok {
				break
			}
			mapFn(split, sm)
		}
	}

	// Barrera map -> reduce: todo lo enviado antes del stop queda
	// almacenado en el data manager de su nodo destino
	sm.StopSend()
	sm.BlockTillRecvEnd()

	sorted := sm.IntoSortedStream()

	// Fase reduce: la agregacion ya no necesita presort y todo se
	// particiona hacia el master
	sm.SetPresort(false)
	sm.StartReceive()
	if !sm.IsReceiving() {
		utils.LogJSON("ERROR", "No se pudo recibir en la fase de reduce", map[string]interface{}{"job": ctx.JobName})
		if sorted != nil {
			sorted.Close()
		}
		return false
	}

	if sorted != nil {
		reduceFn(sorted, sm)
		sorted.Close()
	}

	sm.FinalizeSend()
	sm.BlockTillRecvEnd()

	if ctx.IsServer {
		return sm.PourToTextFile(ctx.OutputPath)
	}
	return true
}
