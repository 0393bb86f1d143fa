/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: streammanager.go
Descripcion: Nucleo del shuffle. Establece la malla completa de
             streams peer a peer (un saliente y un entrante por cada
             otro nodo), corre los hilos de recepcion hacia el data
             manager, rutea los push segun el particionador y ejecuta
             el handshake de cierre por fases (stop/finalize + drain).
*/

package shuffle

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chost/internal/config"
	"chost/internal/record"
	"chost/internal/spill"
	"chost/internal/stream"
	"chost/internal/utils"
)

// outStream serializa los envios concurrentes hacia un mismo peer
// (modo multi-mapper)
type outStream struct {
	mu sync.Mutex
	s  *stream.ObjectOutputStream
}

// StreamManager mantiene la malla completa del cluster para un job
type StreamManager struct {
	selfID      int
	clusterSize int
	data        *DataManager
	istreams    []*stream.ObjectInputStream
	ostreams    []*outStream // indexado por id de nodo; nil para self
	connected   bool
	receiving   bool
	recvWG      sync.WaitGroup
}

// NewStreamManager - Construye el manager y arma la malla completa
// Entrada: cfg - configuracion del proceso, peers - lista de peers con
//
//	este nodo primero, dir - directorio de trabajo, tag - tipo de
//	registro del shuffle
// Salida: manager; consultar IsConnected antes de map/reduce
// Descripcion: Abre el socket de escucha, lanza la tarea de accept y
//
//	una tarea de dial por peer remoto (con reintentos acotados).
//	El exito exige todas las conexiones en ambos sentidos; ante
//	cualquier fallo cierra todo y queda permanentemente
//	desconectado.
func NewStreamManager(cfg config.Config, peers config.IPConfig, dir string, tag byte) *StreamManager {
	m := &StreamManager{}
	if len(peers) == 0 {
		utils.LogJSON("ERROR", "Configuracion de peers vacia", nil)
		return m
	}
	m.selfID = peers[0].ID
	m.clusterSize = len(peers)
	m.data = NewDataManager(dir, tag, cfg.MaxDataSize, cfg.MergeSortWay)
	m.init(cfg, peers)
	return m
}

// init - Establecimiento de conexiones de la malla
func (m *StreamManager) init(cfg config.Config, peers config.IPConfig) {
	for _, p := range peers {
		if p.ID < 0 || p.ID >= m.clusterSize {
			utils.LogJSON("ERROR", "Id de nodo fuera de rango", map[string]interface{}{"id": p.ID})
			return
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.StreamPort))
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo abrir el socket de escucha del shuffle", map[string]interface{}{"port": cfg.StreamPort, "error": err.Error()})
		return
	}

	m.ostreams = make([]*outStream, m.clusterSize)
	var (
		acceptMu sync.Mutex
		accepted []*stream.ObjectInputStream
	)

	var g errgroup.Group

	// Tarea de accept: espera los N-1 streams entrantes con timeout
	// acotado por conexion
	g.Go(func() error {
		defer ln.Close()
		tcpLn := ln.(*net.TCPListener)
		for i := 1; i < m.clusterSize; i++ {
			tcpLn.SetDeadline(time.Now().Add(cfg.AcceptTimeout))
			conn, err := tcpLn.Accept()
			if err != nil {
				return fmt.Errorf("accept fallo: %w", err)
			}
			acceptMu.Lock()
			accepted = append(accepted, stream.NewInputStream(conn))
			acceptMu.Unlock()
		}
		return nil
	})

	// Una tarea de dial por peer remoto con reintentos acotados
	for _, p := range peers[1:] {
		p := p
		g.Go(func() error {
			addr := p.DialAddr(cfg.StreamPort)
			for attempt := 1; attempt <= cfg.MaxConnectionAttempt; attempt++ {
				out, err := stream.Dial(addr)
				if err == nil {
					m.ostreams[p.ID] = &outStream{s: out}
					return nil
				}
				time.Sleep(cfg.ConnectionRetryInterval)
			}
			return fmt.Errorf("no se pudo conectar a %s", addr)
		})
	}

	if err := g.Wait(); err != nil {
		utils.LogJSON("ERROR", "Fallo el armado de la malla", map[string]interface{}{"error": err.Error()})
		m.istreams = accepted
		m.clearStreams()
		return
	}

	m.istreams = accepted
	m.connected = true
	utils.LogJSON("INFO", "Malla de shuffle establecida", map[string]interface{}{"self": m.selfID, "cluster_size": m.clusterSize})
}

// clearStreams - Cierra y libera todos los streams
func (m *StreamManager) clearStreams() {
	for i, out := range m.ostreams {
		if out != nil && out.s != nil {
			out.s.Close()
			m.ostreams[i] = nil
		}
	}
	for _, is := range m.istreams {
		is.Close()
	}
	m.istreams = nil
	m.connected = false
}

// IsConnected - True si la malla quedo establecida
func (m *StreamManager) IsConnected() bool {
	return m.connected
}

// IsReceiving - True si existen hilos de recepcion activos
func (m *StreamManager) IsReceiving() bool {
	return m.receiving
}

// StartReceive - Lanza un hilo de recepcion por stream entrante
// Descripcion: Cada hilo almacena registros en el data manager hasta
//
//	observar el centinela del peer (o el cierre del socket). Se
//	vuelve a llamar al inicio de la fase de reduce.
func (m *StreamManager) StartReceive() {
	if m.receiving || !m.connected {
		return
	}
	for _, is := range m.istreams {
		is := is
		m.recvWG.Add(1)
		go func() {
			defer m.recvWG.Done()
			for {
				rec, err := is.Recv()
				if err != nil {
					// Centinela o cierre: fin limpio de esta fase
					return
				}
				if !m.data.Store(rec) {
					return
				}
			}
		}()
	}
	m.receiving = true
}

// BlockTillRecvEnd - Espera el fin de todos los hilos de recepcion
// Descripcion: Tras StopSend en todos los peers, garantiza que todo
//
//	registro enviado en la fase ya fue almacenado en el data
//	manager de su nodo destino. Idempotente.
func (m *StreamManager) BlockTillRecvEnd() {
	if !m.receiving {
		return
	}
	m.recvWG.Wait()
	m.receiving = false
}

// Push - Rutea un registro a su nodo dueño
// Entrada: rec - registro emitido, p - particionador
// Salida: false si el almacenado local o el envio fallo
// Descripcion: Si el destino es este nodo copia el registro al data
//
//	manager (el llamador puede reutilizar el suyo); si no, lo
//	envia por el stream saliente del destino.
func (m *StreamManager) Push(rec record.Record, p Partitioner) bool {
	id := p.Partition(rec.Hash(), m.clusterSize)
	if id == m.selfID {
		return m.data.Store(rec.Clone())
	}
	if id < 0 || id >= len(m.ostreams) {
		return false
	}
	out := m.ostreams[id]
	if out == nil || out.s == nil {
		return false
	}
	out.mu.Lock()
	err := out.s.Send(rec)
	out.mu.Unlock()
	return err == nil
}

// StopSend - Envia el centinela por cada stream saliente sin cerrar
// Descripcion: Barrera map -> reduce: los peers drenan su recepcion
//
//	mientras este nodo conserva los sockets para la fase siguiente.
func (m *StreamManager) StopSend() {
	for _, out := range m.ostreams {
		if out != nil && out.s != nil {
			out.mu.Lock()
			out.s.Stop()
			out.mu.Unlock()
		}
	}
}

// FinalizeSend - Envia el centinela y cierra cada stream saliente
// Descripcion: Se usa al final del job; los streams quedan liberados.
func (m *StreamManager) FinalizeSend() {
	for i, out := range m.ostreams {
		if out != nil && out.s != nil {
			out.mu.Lock()
			out.s.Close()
			out.mu.Unlock()
			m.ostreams[i] = nil
		}
	}
}

// SetPresort - Propaga el flag de presort al data manager
func (m *StreamManager) SetPresort(presort bool) {
	m.data.SetPresort(presort)
}

// IntoSortedStream - Drena el data manager a un stream ordenado
func (m *StreamManager) IntoSortedStream() *spill.SortedStream {
	return m.data.IntoSortedStream()
}

// Data - Acceso al data manager (tests de barrera)
func (m *StreamManager) Data() *DataManager {
	return m.data
}

// PourToTextFile - Vuelca los registros locales a un archivo de texto
// Entrada: path - ruta del archivo de salida
// Salida: false si fallo la escritura
// Descripcion: Obtiene un stream sin orden del data manager y escribe
//
//	la forma legible de cada registro, una por linea. Solo lo
//	llama el master tras la barrera del reduce.
func (m *StreamManager) PourToTextFile(path string) bool {
	f, err := os.Create(path)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo crear el archivo de salida", map[string]interface{}{"path": path, "error": err.Error()})
		return false
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if unsorted := m.data.IntoUnsortedStream(); unsorted != nil {
		defer unsorted.Close()
		for {
			rec, ok := unsorted.Get()
			if !ok {
				break
			}
			fmt.Fprintln(w, rec.String())
		}
	}
	return w.Flush() == nil
}

// Close - Cierra streams, drena hilos y libera el data manager
func (m *StreamManager) Close() {
	m.FinalizeSend()
	m.BlockTillRecvEnd()
	for _, is := range m.istreams {
		is.Close()
	}
	m.istreams = nil
	m.connected = false
	if m.data != nil {
		m.data.Clear()
	}
}
