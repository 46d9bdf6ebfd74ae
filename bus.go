package mt9d115

import (
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mt9d115/retry"
	"tinygo.org/x/drivers"
)

// Registers are addressed with 16 bits and hold 16 bits, both sent high
// byte first.

// readReg reads one register in a single write-address, read-value
// transaction.
func (d *Dev) readReg(addr uint16) (uint16, error) {
	if d.c == nil {
		return 0, ErrNoDevice
	}
	var w, r [2]byte
	binary.BigEndian.PutUint16(w[:], addr)
	if err := d.c.Tx(w[:], r[:]); err != nil {
		return 0, fmt.Errorf("%w: read %04X: %w", ErrTransfer, addr, err)
	}
	return binary.BigEndian.Uint16(r[:]), nil
}

// writeReg writes one register, retrying on bus errors.
func (d *Dev) writeReg(addr, val uint16) error {
	if d.c == nil {
		return ErrNoDevice
	}
	var w [4]byte
	binary.BigEndian.PutUint16(w[0:], addr)
	binary.BigEndian.PutUint16(w[2:], val)

	err := d.writePolicy().Do(func(int) (bool, error) {
		err := d.c.Tx(w[:], nil)
		if err != nil {
			d.log.Printf("mt9d115: i2c transfer failed, retrying %04x %04x: %v", addr, val, err)
		}
		return err == nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: write %04X=%04X: %w", ErrTransfer, addr, val, err)
	}
	return nil
}

func (d *Dev) writePolicy() retry.Policy {
	return retry.Policy{
		Attempts: d.opts.MaxRetries + 1,
		Delay:    d.opts.RetryDelay,
		Sleep:    d.sleep,
	}
}

// FromTinyGo adapts a TinyGo I²C bus so NewI2C can drive the sensor from a
// microcontroller board.
func FromTinyGo(b drivers.I2C) i2c.Bus {
	return &tinyGoBus{b: b}
}

type tinyGoBus struct {
	b drivers.I2C
}

func (t *tinyGoBus) String() string {
	return "tinygo-i2c"
}

func (t *tinyGoBus) Tx(addr uint16, w, r []byte) error {
	return t.b.Tx(addr, w, r)
}

// SetSpeed is not supported; TinyGo buses are clocked by machine.I2CConfig.
func (t *tinyGoBus) SetSpeed(physic.Frequency) error {
	return errors.New("mt9d115: tinygo bus speed is set by the board configuration")
}
