/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: main.go (chrun)
Descripcion: Cliente CLI que arranca un job en el cluster. Indexa el
             archivo de configuracion, invoca al master local por el
             socket de control y espera el byte de estado final.
*/

package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"chost/internal/config"
	"chost/internal/utils"
)

// main - Punto de entrada del CLI
// Entrada: flags -c <conf> -i <input> -o <output> -j <job>
// Salida: exit code distinto de cero ante error de setup
// Descripcion: Valida argumentos, escribe el ipconfig indexado en el
//
//	directorio base, envia CALL_MASTER con las tres rutas y
//	reporta el resultado con los segundos transcurridos.
func main() {
	confPath := flag.String("c", "", "Archivo de configuracion (una IP por linea)")
	dataPath := flag.String("i", "", "Archivo de datos de entrada")
	outputPath := flag.String("o", "", "Archivo de salida")
	jobPath := flag.String("j", "", "Binario del job")
	flag.Parse()

	if *confPath == "" || *dataPath == "" || *outputPath == "" || *jobPath == "" {
		fmt.Println("Uso: chrun -c [configuracion] -i [datos] -o [salida] -j [job]")
		os.Exit(1)
	}

	// Rutas absolutas: el master corre en otro proceso
	dataAbs, err := filepath.Abs(*dataPath)
	if err != nil {
		fmt.Printf("chrun: ruta de datos invalida: %v\n", err)
		os.Exit(1)
	}
	outputAbs, err := filepath.Abs(*outputPath)
	if err != nil {
		fmt.Printf("chrun: ruta de salida invalida: %v\n", err)
		os.Exit(1)
	}
	jobAbs, err := filepath.Abs(*jobPath)
	if err != nil {
		fmt.Printf("chrun: ruta del job invalida: %v\n", err)
		os.Exit(1)
	}

	if utils.FileExist(outputAbs) {
		fmt.Println("chrun: el archivo de salida ya existe")
		os.Exit(1)
	}

	base, err := utils.WorkingDirectory("")
	if err != nil {
		fmt.Printf("chrun: %v\n", err)
		os.Exit(1)
	}
	if err := config.IndexIPs(*confPath, filepath.Join(base, "ipconfig")); err != nil {
		fmt.Printf("chrun: no se pudo crear la configuracion: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.ServerPort))
	if err != nil {
		fmt.Println("chrun: no se pudo conectar al servidor")
		os.Exit(1)
	}
	defer conn.Close()

	if err := utils.SendByte(conn, config.CallMaster); err != nil {
		fmt.Printf("chrun: %v\n", err)
		os.Exit(1)
	}
	for _, s := range []string{dataAbs, outputAbs, jobAbs} {
		if err := utils.SendString(conn, []byte(s)); err != nil {
			fmt.Printf("chrun: fallo enviando parametros: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	fmt.Println("Iniciado.")

	status, err := utils.ReceiveByte(conn)
	elapsed := time.Since(start).Seconds()
	switch {
	case err != nil:
		fmt.Println("chrun: sin respuesta del servidor.")
	case status == config.ResSuccess:
		fmt.Println("chrun: exito.")
	default:
		fmt.Println("chrun: fallo.")
	}
	fmt.Printf("En %.0f segundos.\n", elapsed)
}
