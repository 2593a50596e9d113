//go:build !windows

package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/control"
	"github.com/dudk/mpxgen/log"
)

func TestChannelFIFO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rds_ctl")
	assert.Nil(t, unix.Mkfifo(path, 0o600))

	c := control.Channel{Path: path, Logger: log.Discard()}
	p := mpxgen.NewParams()
	poll, err := c.Control("test", p)
	assert.Nil(t, err)
	defer c.Flush("test")

	// no writer yet, poll must not block.
	assert.False(t, poll())

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	assert.Nil(t, err)
	defer w.Close()
	assert.False(t, poll())

	_, err = w.WriteString("RT partial")
	assert.Nil(t, err)
	assert.False(t, poll())
	assert.Equal(t, mpxgen.DefaultStation().RT, p.Station().RT)

	_, err = w.WriteString(" line\nPTY 5\n")
	assert.Nil(t, err)
	assert.True(t, poll())
	assert.Equal(t, "partial line", p.Station().RT)
	assert.True(t, poll())
	assert.Equal(t, uint8(5), p.Station().PTY)
	assert.False(t, poll())
}

func TestOpenNotReadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	path := filepath.Join(t.TempDir(), "locked")
	assert.Nil(t, os.WriteFile(path, nil, 0o200))

	_, err := control.Open(path)
	assert.ErrorIs(t, err, control.ErrNotReadable)
}
