package conn

import (
	"periph.io/x/conn/v3"
)

// Tx turns a write-only periph connection into an io.Writer.
type Tx struct {
	c conn.Conn
}

// NewTx wraps c.
func NewTx(c conn.Conn) *Tx {
	return &Tx{c: c}
}

func (t *Tx) String() string {
	return t.c.String()
}

// Write sends p in a single transaction.
func (t *Tx) Write(p []byte) (int, error) {
	if err := t.c.Tx(p, nil); err != nil {
		return 0, err
	}
	return len(p), nil
}
