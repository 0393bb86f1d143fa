/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: utils_test.go
Descripcion: Pruebas de las primitivas compartidas: strings y archivos
             con prefijo de longitud, tokens aleatorios y resolucion
             del directorio de trabajo.
*/

package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"Normal", []byte("hola mundo")},
		{"Vacio", nil},
		{"Binario", []byte{0x00, 0xFF, 0x10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, SendString(&buf, tc.data))
			got, err := ReceiveString(&buf)
			require.NoError(t, err)
			require.Equal(t, len(tc.data), len(got))
			if len(tc.data) > 0 {
				require.Equal(t, tc.data, got)
			}
		})
	}
}

func TestByteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SendByte(&buf, 0x42))
	b, err := ReceiveByte(&buf)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "origen.bin")
	dest := filepath.Join(dir, "destino.bin")
	content := []byte("contenido del job\x00binario")
	require.NoError(t, os.WriteFile(src, content, 0644))

	var buf bytes.Buffer
	require.NoError(t, SendFile(&buf, src))
	require.NoError(t, ReceiveFile(&buf, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestRandomString(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := RandomString(8)
		require.Len(t, s, 8)
		require.False(t, seen[s], "los tokens no deben repetirse")
		seen[s] = true
	}
	require.Len(t, RandomString(40), 40)
}

func TestWorkingDirectory(t *testing.T) {
	base := t.TempDir()
	t.Setenv("CHOST_HOME", base)

	dir, err := WorkingDirectory("job01")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "job01"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dest := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(src, []byte("datos"), 0644))
	require.NoError(t, Copy(src, dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "datos", string(got))
	require.True(t, FileExist(dest))
	require.False(t, FileExist(filepath.Join(dir, "c")))
}
