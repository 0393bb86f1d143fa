/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: manager.go
Descripcion: Administradores de recursos del job detras de la interfaz
             SourceManager. El master sirve splits desde su splitter
             local y corre los hilos de distribucion hacia los
             workers; el worker pide splits al master por el socket
             de control con CALL_POLL.
*/

package source

import (
	"fmt"
	"net"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"chost/internal/config"
	"chost/internal/utils"
)

// SourceManager entrega splits de entrada al mapper
type SourceManager interface {
	// IsValid - True si el administrador esta operativo
	IsValid() bool

	// Poll - Siguiente split de entrada; false al agotar la fuente
	Poll() (string, bool)
}

// --- Master ---

// Master sirve splits desde el archivo de datos local y distribuye
// configuracion, binario del job y splits a cada worker
type Master struct {
	splitter       *Splitter
	jobFilePath    string
	jobFileContent []byte
	workerOK       []bool
	g              *errgroup.Group
}

// NewMaster - Constructor del source manager del master
// Entrada: dataFile - archivo de entrada, jobFilePath - binario del
//
//	job, splitSize - tamaño de split
// Salida: manager; consultar IsValid
// Descripcion: Cachea el binario del job para no releerlo por worker
//
//	y abre el splitter sobre el archivo de datos.
func NewMaster(dataFile, jobFilePath string, splitSize int) *Master {
	m := &Master{jobFilePath: jobFilePath, splitter: NewSplitter(splitSize)}
	content, err := os.ReadFile(jobFilePath)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo leer el binario del job", map[string]interface{}{"path": jobFilePath, "error": err.Error()})
		return m
	}
	m.jobFileContent = content
	if err := m.splitter.Open(dataFile); err != nil {
		utils.LogJSON("ERROR", "No se pudo abrir el archivo de datos", map[string]interface{}{"path": dataFile, "error": err.Error()})
	}
	return m
}

// IsValid - True si datos y binario del job estan disponibles
func (m *Master) IsValid() bool {
	return m.jobFileContent != nil && m.splitter.IsValid()
}

// Poll - Siguiente split desde el splitter local
func (m *Master) Poll() (string, bool) {
	return m.splitter.Next()
}

// StartDistributionThreads - Lanza un hilo de distribucion por worker
// Entrada: ips - lista de peers (master primero), port - puerto de
//
//	control de los workers
// Descripcion: Cada hilo entrega configuracion reordenada + binario
//
//	del job, sirve splits bajo demanda y espera el byte de estado
//	final del worker.
func (m *Master) StartDistributionThreads(ips config.IPConfig, port int) {
	if !m.IsValid() {
		utils.LogJSON("ERROR", "Distribucion sin archivo de datos abierto", nil)
		return
	}
	m.workerOK = make([]bool, len(ips))
	m.g = &errgroup.Group{}
	for i := 1; i < len(ips); i++ {
		i := i
		m.g.Go(func() error {
			m.distribute(i, ips, port)
			return nil
		})
	}
}

// distribute - Atiende a un worker hasta su estado final
func (m *Master) distribute(i int, ips config.IPConfig, port int) {
	addr := fmt.Sprintf("%s:%d", ips[i].Host(), port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo conectar al worker", map[string]interface{}{"addr": addr, "error": err.Error()})
		return
	}
	defer conn.Close()

	if err := utils.SendByte(conn, config.CallWorker); err != nil {
		utils.LogJSON("ERROR", "No se pudo invocar al worker", map[string]interface{}{"addr": addr, "error": err.Error()})
		return
	}
	if err := utils.SendString(conn, []byte(ips.Rearranged(i))); err != nil {
		utils.LogJSON("ERROR", "No se pudo enviar la configuracion", map[string]interface{}{"addr": addr, "error": err.Error()})
		return
	}
	if err := utils.SendString(conn, m.jobFileContent); err != nil {
		utils.LogJSON("ERROR", "No se pudo enviar el binario del job", map[string]interface{}{"addr": addr, "error": err.Error()})
		return
	}

	for {
		verb, err := utils.ReceiveByte(conn)
		if err != nil {
			utils.LogJSON("ERROR", "Sin respuesta del worker", map[string]interface{}{"addr": addr})
			return
		}
		if verb == config.CallPoll {
			split, ok := m.splitter.Next()
			if !ok {
				// Tamaño 0: fin de la entrada, el socket queda
				// abierto para el handshake final
				if err := utils.SendString(conn, nil); err != nil {
					return
				}
				continue
			}
			if err := utils.SendString(conn, []byte(split)); err != nil {
				utils.LogJSON("ERROR", "No se pudo enviar el split", map[string]interface{}{"addr": addr, "error": err.Error()})
				return
			}
			continue
		}
		m.workerOK[i] = verb == config.ResSuccess
		return
	}
}

// BlockTillDistributionEnd - Espera el fin de los hilos de distribucion
func (m *Master) BlockTillDistributionEnd() {
	if m.g != nil {
		m.g.Wait()
	}
}

// AllWorkerSuccess - True si todos los workers reportaron exito
func (m *Master) AllWorkerSuccess() bool {
	if len(m.workerOK) == 0 {
		utils.LogJSON("ERROR", "No hay resultados de workers", nil)
		return false
	}
	for i := 1; i < len(m.workerOK); i++ {
		if !m.workerOK[i] {
			utils.LogJSON("ERROR", "Worker fallido", map[string]interface{}{"worker": i})
			return false
		}
	}
	return true
}

// --- Worker ---

// Worker pide splits al master por el socket de control
type Worker struct {
	mu   sync.Mutex
	conn net.Conn
	done bool
}

// NewWorker - Constructor sobre el socket de control ya abierto
func NewWorker(conn net.Conn) *Worker {
	return &Worker{conn: conn}
}

// IsValid - True si el socket de control sigue vivo
func (w *Worker) IsValid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

// ReceiveFiles - Recibe configuracion y binario del job
// Entrada: confPath, jobPath - rutas destino en disco
// Salida: error si alguna recepcion fallo
func (w *Worker) ReceiveFiles(confPath, jobPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("source: socket de control invalido")
	}
	if err := utils.ReceiveFile(w.conn, confPath); err != nil {
		return fmt.Errorf("source: fallo recibiendo configuracion: %w", err)
	}
	if err := utils.ReceiveFile(w.conn, jobPath); err != nil {
		return fmt.Errorf("source: fallo recibiendo binario del job: %w", err)
	}
	return nil
}

// Poll - Pide el siguiente split al master
// Salida: split y true; "" y false al fin de la entrada o ante error
// Descripcion: Serializado por mutex para el modo multi-mapper. Un
//
//	string vacio del master marca fin de entrada y deja el socket
//	abierto para el handshake de resultado final.
func (w *Worker) Poll() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil || w.done {
		return "", false
	}
	if err := utils.SendByte(w.conn, config.CallPoll); err != nil {
		utils.LogJSON("ERROR", "No se pudo pedir split", map[string]interface{}{"error": err.Error()})
		w.conn = nil
		return "", false
	}
	data, err := utils.ReceiveString(w.conn)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo recibir split", map[string]interface{}{"error": err.Error()})
		w.conn = nil
		return "", false
	}
	if len(data) == 0 {
		w.done = true
		return "", false
	}
	return string(data), true
}
