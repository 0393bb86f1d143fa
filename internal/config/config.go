/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: config.go
Descripcion: Configuracion del runtime. Define constantes del cluster
             (puertos, tamaños de buffer, reintentos), los verbos del
             protocolo de control y el struct Config que se construye
             una vez al arranque y se pasa por valor (sin globales).
*/

package config

import "time"

// Constantes del cluster (uniformes entre nodos)
const (
	DefaultMaxDataSize      = 1000000          // Registros en memoria antes de spill
	MergeSortWay            = 16               // Fan-in del merge sort externo
	MaxConnectionAttempt    = 15               // Reintentos de conexion entre peers
	ConnectionRetryInterval = 1 * time.Second  // Espera entre reintentos de dial
	AcceptTimeout           = 5 * time.Second  // Timeout por peer entrante
	OpenSpillRetryInterval  = 1 * time.Second  // Espera entre reintentos de apertura de spill
	SplitSize               = 65536            // Tamaño maximo de un split de entrada
	ThreadPoolSize          = 4                // Workers del pool generico
	NumMapper               = 4                // Mappers concurrentes (modo multi-mapper)
	RandomFileNameLength    = 8                // Longitud del token de archivos de spill
	RandomJobNameLength     = 5                // Longitud del nombre aleatorio de job
)

// Puertos (identicos en todo el cluster)
const (
	StreamManagerPort = 8711 // Shuffle peer a peer
	ServerPort        = 8712 // Socket de control
)

// Verbos del protocolo de control
const (
	CallMaster byte = 0x01 // chrun -> master: iniciar job
	CallWorker byte = 0x02 // master -> worker: invocar worker
	CallPoll   byte = 0x03 // worker -> master: pedir siguiente split
	ResSuccess byte = 0x10 // resultado exitoso
	ResFail    byte = 0x11 // resultado fallido
)

// Config agrupa los parametros ajustables de un proceso
// El primer consumidor la construye con Default() y la pasa por valor;
// los tests sobreescriben puertos y tiempos.
type Config struct {
	StreamPort              int           // Puerto de escucha del shuffle
	ServerPort              int           // Puerto del socket de control
	MaxDataSize             int           // Umbral de spill del data manager
	MergeSortWay            int           // Fan-in del merge sort externo
	MaxConnectionAttempt    int           // Reintentos de dial
	ConnectionRetryInterval time.Duration // Espera entre reintentos de dial
	AcceptTimeout           time.Duration // Timeout por accept
	SplitSize               int           // Tamaño maximo de split
	ThreadPoolSize          int           // Tamaño del pool de chserver
	NumMapper               int           // Mappers concurrentes
}

// Default - Construye la configuracion con los valores del cluster
func Default() Config {
	return Config{
		StreamPort:              StreamManagerPort,
		ServerPort:              ServerPort,
		MaxDataSize:             DefaultMaxDataSize,
		MergeSortWay:            MergeSortWay,
		MaxConnectionAttempt:    MaxConnectionAttempt,
		ConnectionRetryInterval: ConnectionRetryInterval,
		AcceptTimeout:           AcceptTimeout,
		SplitSize:               SplitSize,
		ThreadPoolSize:          ThreadPoolSize,
		NumMapper:               NumMapper,
	}
}
