/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: main.go (datagen)
Descripcion: Generador de datasets sinteticos para pruebas del runtime.
             Crea archivos de texto grandes para benchmarking de
             word count distribuido, opcionalmente comprimidos con
             gzip. Parametrizable via flags de linea de comandos.
*/

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var (
	outPath   = flag.String("o", "data/big_text.txt", "Archivo de salida")
	linesText = flag.Int("lines", 500000, "Lineas de texto a generar")
	compress  = flag.Bool("gzip", false, "Comprimir la salida con gzip")
	seed      = flag.Int64("seed", 1, "Semilla del generador aleatorio")
)

// Vocabulario fijo para generacion de texto
var words = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing",
	"elit", "data", "shuffle", "go", "distributed", "system", "batch",
	"processing", "node", "network", "failure", "recovery", "merge",
}

// main - Punto de entrada del generador
// Entrada: flags de CLI (-o, -lines, -gzip, -seed)
// Salida: ninguna (void), crea el archivo de datos
// Descripcion: Genera lineas de 5 a 14 palabras tomadas del
//
//	vocabulario fijo. Con -gzip el archivo resultante puede
//	consumirse directo por el splitter (detecta el sufijo .gz).
func main() {
	flag.Parse()
	rnd := rand.New(rand.NewSource(*seed))

	path := *outPath
	if *compress && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	os.MkdirAll(filepath.Dir(path), 0755)

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("datagen: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var out io.Writer = f
	var gz *gzip.Writer
	if *compress {
		gz = gzip.NewWriter(f)
		defer gz.Close()
		out = gz
	}

	w := bufio.NewWriter(out)
	fmt.Printf("Generando %d lineas en %s...\n", *linesText, path)
	for i := 0; i < *linesText; i++ {
		numWords := rnd.Intn(10) + 5
		var line []string
		for j := 0; j < numWords; j++ {
			line = append(line, words[rnd.Intn(len(words))])
		}
		w.WriteString(strings.Join(line, " ") + "\n")
	}
	if err := w.Flush(); err != nil {
		fmt.Printf("datagen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Generacion completada.")
}
