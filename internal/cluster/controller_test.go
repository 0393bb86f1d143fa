/*
Autores: Steven Sequeira Araya, Jefferson Salas Cordero
Nombre del archivo: controller_test.go
Descripcion: Pruebas del protocolo de control: despacho de verbos y
             byte de estado final ante fallos de setup del master.
*/

package cluster

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chost/internal/config"
	"chost/internal/utils"
)

func TestServeVerboInvalido(t *testing.T) {
	c1, c2 := net.Pipe()
	done := make(chan struct{})
	go func() {
		Serve(c2, config.Default())
		close(done)
	}()
	require.NoError(t, utils.SendByte(c1, 0x99))
	<-done
	// Serve cierra la conexion sin byte de estado
	_, err := utils.ReceiveByte(c1)
	require.Error(t, err)
	c1.Close()
}

func TestServeMasterFallaSinArchivos(t *testing.T) {
	// El master con rutas inexistentes debe responder RES_FAIL por el
	// mismo socket de control
	base := t.TempDir()
	t.Setenv("CHOST_HOME", base)
	require.NoError(t, os.WriteFile(filepath.Join(base, "ipconfig"), []byte("0 127.0.0.1\n"), 0644))

	c1, c2 := net.Pipe()
	go Serve(c2, config.Default())

	require.NoError(t, utils.SendByte(c1, config.CallMaster))
	for _, s := range []string{"/no/existe/datos", "/no/existe/salida", "/no/existe/job"} {
		require.NoError(t, utils.SendString(c1, []byte(s)))
	}
	status, err := utils.ReceiveByte(c1)
	require.NoError(t, err)
	require.Equal(t, config.ResFail, status)
	c1.Close()
}

func TestServeMasterSinConfiguracion(t *testing.T) {
	// Sin ipconfig en el directorio base el setup falla
	t.Setenv("CHOST_HOME", t.TempDir())

	c1, c2 := net.Pipe()
	go Serve(c2, config.Default())

	require.NoError(t, utils.SendByte(c1, config.CallMaster))
	for _, s := range []string{"/d", "/s", "/j"} {
		require.NoError(t, utils.SendString(c1, []byte(s)))
	}
	status, err := utils.ReceiveByte(c1)
	require.NoError(t, err)
	require.Equal(t, config.ResFail, status)
	c1.Close()
}
