package mt9d115

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mt9d115/regtable"
)

// regFakeState is a register of the fake sensor: writing it sets the value
// the sequencer state variable reads back.
const regFakeState = 0x7FFF

var errNak = errors.New("fake: nak")

// fakeBus emulates an MT9D115 on the bus.
type fakeBus struct {
	mu sync.Mutex

	writes []regtable.Entry // Successful writes, in order
	txs    int              // All transactions, failed or not
	speed  physic.Frequency

	// Sequencer state. script is consumed first, one value per
	// successful status read; then state is returned.
	script []uint16
	state  uint16
	frozen bool // Ignore writes to regFakeState

	failWrite func(addr, val uint16) bool
	failRead  func(addr uint16) bool
}

func (b *fakeBus) String() string { return "fake" }

func (b *fakeBus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = f
	return nil
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++
	if addr != I2CAddr {
		return fmt.Errorf("fake: unexpected address %#x", addr)
	}
	switch {
	case len(w) == 4 && len(r) == 0:
		a := binary.BigEndian.Uint16(w[0:])
		v := binary.BigEndian.Uint16(w[2:])
		if b.failWrite != nil && b.failWrite(a, v) {
			return errNak
		}
		b.writes = append(b.writes, regtable.Entry{Addr: a, Val: v})
		if a == regFakeState && !b.frozen {
			b.state = v
		}
		return nil
	case len(w) == 2 && len(r) == 2:
		a := binary.BigEndian.Uint16(w)
		if b.failRead != nil && b.failRead(a) {
			return errNak
		}
		var v uint16
		if a == regMCUData {
			if len(b.script) > 0 {
				v, b.script = b.script[0], b.script[1:]
			} else {
				v = b.state
			}
		}
		binary.BigEndian.PutUint16(r, v)
		return nil
	}
	return fmt.Errorf("fake: unexpected transaction w=%x r=%d", w, len(r))
}

// tableWrites returns the writes made by tables, leaving out the status
// poll's select writes.
func (b *fakeBus) tableWrites() []regtable.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []regtable.Entry
	for _, e := range b.writes {
		if e.Addr != regMCUAddr {
			out = append(out, e)
		}
	}
	return out
}

// wrote reports whether the first register of t was written.
func (b *fakeBus) wrote(t regtable.Table) bool {
	return b.count(t) > 0
}

// count returns how many times the first register of t was written.
func (b *fakeBus) count(t regtable.Table) int {
	n := 0
	for _, e := range b.tableWrites() {
		if e == t[0] {
			n++
		}
	}
	return n
}

func (b *fakeBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = nil
	b.txs = 0
}

// testTables returns a complete table set. Every table starts with a write
// to its own register so tests can tell which tables ran.
func testTables() *regtable.Set {
	s := &regtable.Set{
		Init:          regtable.Table{{Addr: 0x1000, Val: 1}, regtable.Delay(10), {Addr: 0x1001, Val: 2}, {Addr: regFakeState, Val: 3}, {Addr: regtable.End}, {Addr: 0x1fff, Val: 0}},
		BackToPreview: regtable.Table{{Addr: 0x2000, Val: 1}, {Addr: regFakeState, Val: 3}},
		Modes: map[string]regtable.Table{
			"1600x1200": {{Addr: 0x3000, Val: 1}, {Addr: regFakeState, Val: 7}},
			"1280x720":  {{Addr: 0x3100, Val: 1}, {Addr: regFakeState, Val: 7}},
			"800x600":   {{Addr: 0x3200, Val: 1}},
			"640x480":   {{Addr: 0x3300, Val: 1}},
		},
	}
	group := func(base uint16, names ...string) map[string]regtable.Table {
		m := make(map[string]regtable.Table, len(names))
		for i, n := range names {
			m[n] = regtable.Table{{Addr: base + uint16(i), Val: 1}}
		}
		return m
	}
	s.Effect = group(0x4000, "none", "mono", "sepia", "negative", "solarize", "posterize")
	s.WhiteBalance = group(0x5000, "auto", "incandescent", "sunlight", "fluorescent")
	s.Brightness = group(0x6000, "n2", "n1", "0", "p1", "p2")
	s.Scene = group(0x7000, "auto", "action", "night")
	return s
}

type testDev struct {
	*Dev
	bus    *fakeBus
	tables *regtable.Set
	logs   *bytes.Buffer
	sleeps *[]time.Duration
}

func newTestDev(t *testing.T, bus *fakeBus, opts *Opts) testDev {
	t.Helper()
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	logs := &bytes.Buffer{}
	o.Logger = log.New(logs, "", 0)
	tables := testTables()
	d, err := NewI2C(bus, tables, &o)
	if err != nil {
		t.Fatalf("NewI2C() = %v", err)
	}
	var mu sync.Mutex
	sleeps := &[]time.Duration{}
	d.sleep = func(dur time.Duration) {
		mu.Lock()
		*sleeps = append(*sleeps, dur)
		mu.Unlock()
	}
	return testDev{Dev: d, bus: bus, tables: tables, logs: logs, sleeps: sleeps}
}
