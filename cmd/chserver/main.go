/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: main.go (chserver)
Descripcion: Daemon de cada nodo del cluster. Escucha el socket de
             control y despacha cada conexion al controlador mediante
             el pool de workers: CALL_MASTER arranca un job, CALL_WORKER
             atiende la invocacion de un master remoto.
*/

package main

import (
	"fmt"
	"log"
	"net"

	"chost/internal/cluster"
	"chost/internal/config"
	"chost/internal/pool"
	"chost/internal/utils"
)

// main - Punto de entrada del daemon
// Entrada: ninguna (configuracion via variables de entorno)
// Salida: ninguna (void), loop de accept bloqueante
// Descripcion: Resuelve el directorio base de trabajo, abre el socket
//
//	de control y sirve conexiones con el pool de workers.
func main() {
	cfg := config.Default()

	// Crear el directorio base si no existe
	if _, err := utils.WorkingDirectory(""); err != nil {
		log.Fatalf("No se pudo preparar el directorio de trabajo: %v", err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.ServerPort))
	if err != nil {
		log.Fatalf("Puerto ocupado: %v", err)
	}

	workers := pool.New(cfg.ThreadPoolSize)
	defer workers.Stop()

	utils.LogJSON("INFO", "chserver iniciado", map[string]interface{}{"port": cfg.ServerPort})
	for {
		conn, err := ln.Accept()
		if err != nil {
			utils.LogJSON("ERROR", "Accept fallo", map[string]interface{}{"error": err.Error()})
			continue
		}
		c := conn
		workers.Submit(func() { cluster.Serve(c, cfg) })
	}
}
