/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: controller.go
Descripcion: Controlador del cluster. Atiende los verbos del socket de
             control: CALL_MASTER arranca el job completo (lectura de
             ipconfig, distribucion a workers, job local, agregacion
             de resultados) y CALL_WORKER recibe configuracion y
             binario y corre el job como worker.
*/

package cluster

import (
	"net"
	"path/filepath"

	"chost/internal/config"
	"chost/internal/job"
	"chost/internal/source"
	"chost/internal/utils"
)

// Serve - Atiende una conexion del socket de control
// Entrada: conn - conexion aceptada, cfg - configuracion del proceso
// Descripcion: Lee el verbo inicial y despacha. El resultado del job
//
//	viaja como un unico byte de estado por la misma conexion.
func Serve(conn net.Conn, cfg config.Config) {
	defer conn.Close()
	verb, err := utils.ReceiveByte(conn)
	if err != nil {
		return
	}
	switch verb {
	case config.CallMaster:
		reportStatus(conn, AsMaster(conn, cfg))
	case config.CallWorker:
		reportStatus(conn, AsWorker(conn, cfg))
	default:
		utils.LogJSON("ERROR", "Verbo de control no soportado", map[string]interface{}{"verb": verb})
	}
}

// reportStatus - Envia el byte de estado final por el socket de control
func reportStatus(conn net.Conn, ok bool) {
	status := config.ResFail
	if ok {
		status = config.ResSuccess
	}
	utils.SendByte(conn, status)
}

// AsMaster - Corre un job como nodo master
// Entrada: conn - socket hacia chrun, cfg - configuracion
// Salida: true si el job local y todos los workers reportaron exito
// Descripcion: Recibe las tres rutas (datos, salida, job), lee el
//
//	ipconfig indexado, lanza los hilos de distribucion y ejecuta
//	el job local mientras sirve splits. El exito agregado exige
//	exito local y de cada worker.
func AsMaster(conn net.Conn, cfg config.Config) bool {
	utils.LogJSON("INFO", "Ejecutando como master", nil)

	dataPath, err := utils.ReceiveString(conn)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo recibir la ruta de datos", map[string]interface{}{"error": err.Error()})
		return false
	}
	outputPath, err := utils.ReceiveString(conn)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo recibir la ruta de salida", map[string]interface{}{"error": err.Error()})
		return false
	}
	jobPath, err := utils.ReceiveString(conn)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo recibir la ruta del job", map[string]interface{}{"error": err.Error()})
		return false
	}

	base, err := utils.WorkingDirectory("")
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo resolver el directorio base", map[string]interface{}{"error": err.Error()})
		return false
	}
	confPath := filepath.Join(base, "ipconfig")
	ips, err := config.ReadIPs(confPath)
	if err != nil || len(ips) == 0 {
		utils.LogJSON("ERROR", "Configuracion de peers invalida o vacia", map[string]interface{}{"path": confPath})
		return false
	}

	jobName := utils.RandomString(config.RandomJobNameLength)
	workingDir, err := utils.WorkingDirectory(jobName)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo crear el directorio de trabajo", map[string]interface{}{"error": err.Error()})
		return false
	}
	utils.Copy(confPath, filepath.Join(workingDir, "ipconfig"))

	src := source.NewMaster(string(dataPath), string(jobPath), cfg.SplitSize)
	if !src.IsValid() {
		utils.LogJSON("ERROR", "No se pudo abrir archivo de datos o de job", nil)
		return false
	}

	src.StartDistributionThreads(ips, cfg.ServerPort)

	ok := runJob(ips, src, string(outputPath), string(jobPath), workingDir, jobName, true, cfg)

	src.BlockTillDistributionEnd()

	if !ok {
		utils.LogJSON("ERROR", "El job fallo en el master", map[string]interface{}{"job": jobName})
		return false
	}
	if !src.AllWorkerSuccess() {
		utils.LogJSON("ERROR", "El job fallo en algun worker", map[string]interface{}{"job": jobName})
		return false
	}
	return true
}

// AsWorker - Corre un job como nodo worker
// Entrada: conn - socket hacia el master, cfg - configuracion
// Salida: true si el job local completo
// Descripcion: Recibe configuracion y binario del job en el directorio
//
//	de trabajo propio y corre el job; los splits llegan por el
//	mismo socket via CALL_POLL.
func AsWorker(conn net.Conn, cfg config.Config) bool {
	utils.LogJSON("INFO", "Ejecutando como worker", nil)

	src := source.NewWorker(conn)

	jobName := utils.RandomString(config.RandomJobNameLength)
	workingDir, err := utils.WorkingDirectory(jobName)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo crear el directorio de trabajo", map[string]interface{}{"error": err.Error()})
		return false
	}
	confPath := filepath.Join(workingDir, "ipconfig")
	jobPath := filepath.Join(workingDir, "job")

	if err := src.ReceiveFiles(confPath, jobPath); err != nil {
		utils.LogJSON("ERROR", "No se pudieron recibir configuracion y job", map[string]interface{}{"error": err.Error()})
		return false
	}
	ips, err := config.ReadIPs(confPath)
	if err != nil || len(ips) == 0 {
		utils.LogJSON("ERROR", "Configuracion de peers invalida o vacia", map[string]interface{}{"path": confPath})
		return false
	}
	return runJob(ips, src, "", jobPath, workingDir, jobName, false, cfg)
}

// runJob - Carga el binario del job y lo ejecuta
func runJob(ips config.IPConfig, src source.SourceManager, outputPath, jobPath, workingDir, jobName string, isServer bool, cfg config.Config) bool {
	doJob, err := job.Load(jobPath)
	if err != nil {
		utils.LogJSON("ERROR", "No se pudo cargar el job", map[string]interface{}{"path": jobPath, "error": err.Error()})
		return false
	}
	ctx := &job.Context{
		Peers:               ips,
		Source:              src,
		OutputPath:          outputPath,
		WorkingDir:          workingDir,
		JobName:             jobName,
		IsServer:            isServer,
		SupportsMultiMapper: false,
		Cfg:                 cfg,
	}
	return doJob(ctx)
}
