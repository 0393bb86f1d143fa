/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: job_test.go
Descripcion: Pruebas end-to-end del driver de jobs con el conteo de
             palabras: un nodo solo y dos nodos en localhost con
             puertos distintos. Valida el archivo de salida del master
             y el particionado simetrico entre nodos.
*/

package job

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chost/internal/config"
	"chost/internal/record"
	"chost/internal/shuffle"
	"chost/internal/spill"
)

// stubSource entrega splits predefinidos (fuente de prueba)
type stubSource struct {
	mu     sync.Mutex
	splits []string
}

func (s *stubSource) IsValid() bool {
	return true
}

func (s *stubSource) Poll() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.splits) == 0 {
		return "", false
	}
	split := s.splits[0]
	s.splits = s.splits[1:]
	return split, true
}

// Mapper y reducer del conteo de palabras (mismo esquema que el job
// de ejemplo)
var wordTag = record.TupleTag(record.TagString, record.TagInteger)

func mapWords(split string, sm *shuffle.StreamManager) {
	res := record.NewTuple(record.NewString(""), record.NewInteger(1))
	for _, word := range strings.Fields(split) {
		res.First.(*record.String).Set(word)
		sm.Push(res, shuffle.HashPartitioner{})
	}
}

func reduceWords(sorted *spill.SortedStream, sm *shuffle.StreamManager) {
	var acc record.Record
	for {
		e, ok := sorted.Get()
		if !ok {
			break
		}
		switch {
		case acc == nil:
			acc = e
		case acc.Equal(e):
			acc.Merge(e)
		default:
			sm.Push(acc, shuffle.ZeroPartitioner{})
			acc = e
		}
	}
	if acc != nil {
		sm.Push(acc, shuffle.ZeroPartitioner{})
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func testConfig(port int) config.Config {
	cfg := config.Default()
	cfg.StreamPort = port
	cfg.MaxConnectionAttempt = 30
	cfg.ConnectionRetryInterval = 100 * time.Millisecond
	cfg.AcceptTimeout = 5 * time.Second
	return cfg
}

// readOutputLines - Lineas del archivo de salida, ordenadas
func readOutputLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	sort.Strings(lines)
	return lines
}

func TestWordCountUnNodo(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "salida.txt")

	ctx := &Context{
		Peers:      config.IPConfig{{ID: 0, Addr: "127.0.0.1"}},
		Source:     &stubSource{splits: []string{"the quick the brown the fox\n"}},
		OutputPath: outPath,
		WorkingDir: dir,
		JobName:    "wcount",
		IsServer:   true,
		Cfg:        testConfig(freePort(t)),
	}
	require.True(t, SimpleJob(ctx, wordTag, mapWords, reduceWords))

	require.Equal(t, []string{
		`("brown", 1)`,
		`("fox", 1)`,
		`("quick", 1)`,
		`("the", 3)`,
	}, readOutputLines(t, outPath))
}

func TestWordCountDosNodos(t *testing.T) {
	p0 := freePort(t)
	p1 := freePort(t)
	addr0 := fmt.Sprintf("127.0.0.1:%d", p0)
	addr1 := fmt.Sprintf("127.0.0.1:%d", p1)

	outPath := filepath.Join(t.TempDir(), "salida.txt")

	masterCtx := &Context{
		Peers:      config.IPConfig{{ID: 0, Addr: addr0}, {ID: 1, Addr: addr1}},
		Source:     &stubSource{splits: []string{"the quick the brown\n", "the fox\n"}},
		OutputPath: outPath,
		WorkingDir: t.TempDir(),
		JobName:    "wcount",
		IsServer:   true,
		Cfg:        testConfig(p0),
	}
	workerCtx := &Context{
		Peers:      config.IPConfig{{ID: 1, Addr: addr1}, {ID: 0, Addr: addr0}},
		Source:     &stubSource{}, // solo el master tiene la entrada
		WorkingDir: t.TempDir(),
		JobName:    "wcount",
		IsServer:   false,
		Cfg:        testConfig(p1),
	}

	var wg sync.WaitGroup
	var masterOK, workerOK bool
	wg.Add(2)
	go func() {
		defer wg.Done()
		masterOK = SimpleJob(masterCtx, wordTag, mapWords, reduceWords)
	}()
	go func() {
		defer wg.Done()
		workerOK = SimpleJob(workerCtx, wordTag, mapWords, reduceWords)
	}()
	wg.Wait()

	require.True(t, masterOK, "job del master")
	require.True(t, workerOK, "job del worker")

	// Toda palabra unica aparece exactamente una vez con su conteo
	require.Equal(t, []string{
		`("brown", 1)`,
		`("fox", 1)`,
		`("quick", 1)`,
		`("the", 3)`,
	}, readOutputLines(t, outPath))
}

func TestSimpleJobSinConexion(t *testing.T) {
	// Un peer inalcanzable hace fallar el job sin nada hecho
	ctx := &Context{
		Peers: config.IPConfig{
			{ID: 0, Addr: fmt.Sprintf("127.0.0.1:%d", freePort(t))},
			{ID: 1, Addr: fmt.Sprintf("127.0.0.1:%d", freePort(t))},
		},
		Source:     &stubSource{splits: []string{"hola\n"}},
		WorkingDir: t.TempDir(),
		JobName:    "wcount",
		Cfg:        testConfig(freePort(t)),
	}
	ctx.Cfg.MaxConnectionAttempt = 2
	ctx.Cfg.ConnectionRetryInterval = 50 * time.Millisecond
	ctx.Cfg.AcceptTimeout = 300 * time.Millisecond

	require.False(t, SimpleJob(ctx, wordTag, mapWords, reduceWords))
}
