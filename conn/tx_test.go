package conn

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3/conntest"
)

func TestTxWrite(t *testing.T) {
	c := qt.New(t)

	rec := &conntest.Record{}
	tx := NewTx(rec)

	n, err := tx.Write([]byte{0x21, 0x90})
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)

	n, err = tx.Write([]byte{0x00})
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 1)

	c.Assert(rec.Ops, qt.HasLen, 2)
	c.Assert(rec.Ops[0].W, qt.DeepEquals, []byte{0x21, 0x90})
	c.Assert(rec.Ops[1].W, qt.DeepEquals, []byte{0x00})
}
