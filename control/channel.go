package control

import (
	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/log"
)

// Channel is a pipeline component that polls the control channel at Path
// and applies commands to parameters.
type Channel struct {
	Path   string
	Logger log.Logger

	r *Reader
}

// Control opens the channel and returns the poll closure. Every call of
// the closure consumes at most one line. It returns true if a line was
// consumed.
func (c *Channel) Control(pipeID string, s mpxgen.Setter) (func() bool, error) {
	r, err := Open(c.Path)
	if err != nil {
		return nil, err
	}
	c.r = r
	if c.Logger == nil {
		c.Logger = log.GetLogger()
	}
	c.Logger.Info("reading control commands on ", c.Path)
	return func() bool {
		line, ok := c.r.ReadLine()
		if !ok {
			return false
		}
		if Execute(s, line) {
			c.Logger.Debug("control command applied: ", trimTerminator(line))
		} else {
			c.Logger.Debug("control command unknown: ", trimTerminator(line))
		}
		return true
	}, nil
}

// Flush closes the channel.
func (c *Channel) Flush(string) error {
	if c.r == nil {
		return nil
	}
	err := c.r.Close()
	c.r = nil
	return err
}
