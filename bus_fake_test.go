package panel

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// busOp is one recorded bus write.
type busOp struct {
	Index  bool
	Data   []byte
	Repeat int
}

// recordingBus is a Bus that records every primitive call.
type recordingBus struct {
	ops          []busOp
	held         bool
	transactions int
	unheld       int // writes outside of Acquire/Release
	resets       []gpio.Level
	delays       []time.Duration
	backlight    []int
	inits        int
	postInits    int
	closed       bool

	// failAfter makes the n-th write (1 based) and all later writes fail.
	failAfter int
	writes    int
	err       error
}

func (b *recordingBus) String() string { return "recording bus" }

func (b *recordingBus) Close() error {
	b.closed = true
	return nil
}

func (b *recordingBus) Init() error {
	b.inits++
	return nil
}

func (b *recordingBus) PostInit() error {
	b.postInits++
	return nil
}

func (b *recordingBus) Reset(level gpio.Level) error {
	b.resets = append(b.resets, level)
	return nil
}

func (b *recordingBus) Delay(d time.Duration) {
	b.delays = append(b.delays, d)
}

func (b *recordingBus) Acquire() {
	if b.held {
		panic("bus acquired twice")
	}
	b.held = true
	b.transactions++
}

func (b *recordingBus) Release() {
	if !b.held {
		panic("bus released while not held")
	}
	b.held = false
}

func (b *recordingBus) write(op busOp) error {
	b.writes++
	if b.failAfter > 0 && b.writes >= b.failAfter {
		return b.err
	}
	if !b.held {
		b.unheld++
	}
	b.ops = append(b.ops, op)
	return nil
}

func (b *recordingBus) WriteIndex(index byte) error {
	return b.write(busOp{Index: true, Data: []byte{index}, Repeat: 1})
}

func (b *recordingBus) WriteData(data []byte, repeat int) error {
	return b.write(busOp{Data: append([]byte(nil), data...), Repeat: repeat})
}

func (b *recordingBus) SetBacklight(percent int) error {
	b.backlight = append(b.backlight, percent)
	return nil
}

// reset forgets everything recorded so far.
func (b *recordingBus) reset() {
	b.ops = nil
	b.transactions = 0
	b.backlight = nil
}

// indexes returns the recorded index writes.
func (b *recordingBus) indexes() []byte {
	var out []byte
	for _, op := range b.ops {
		if op.Index {
			out = append(out, op.Data[0])
		}
	}
	return out
}

// dataBytes returns the number of data bytes transmitted.
func (b *recordingBus) dataBytes() int {
	var n int
	for _, op := range b.ops {
		if !op.Index {
			n += len(op.Data) * op.Repeat
		}
	}
	return n
}

// lastData returns the payload of the last data write.
func (b *recordingBus) lastData() busOp {
	for i := len(b.ops) - 1; i >= 0; i-- {
		if !b.ops[i].Index {
			return b.ops[i]
		}
	}
	return busOp{}
}

// registers decodes index writes followed by a single 16-bit data word.
func (b *recordingBus) registers() [][2]uint16 {
	var out [][2]uint16
	for i := 0; i+1 < len(b.ops); i++ {
		if b.ops[i].Index && !b.ops[i+1].Index && len(b.ops[i+1].Data) == 2 && b.ops[i+1].Repeat == 1 {
			value := uint16(b.ops[i+1].Data[0])<<8 | uint16(b.ops[i+1].Data[1])
			out = append(out, [2]uint16{uint16(b.ops[i].Data[0]), value})
			i++
		}
	}
	return out
}
