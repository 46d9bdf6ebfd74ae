// Package mt9d115 controls an Aptina MT9D115 2MP SoC image sensor via I²C.
//
// The sensor is programmed with register tables supplied by the board (see
// package regtable). Mode changes are confirmed by polling the sensor's
// sequencer state.
//
// See the examples for how to use this package.
package mt9d115

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mt9d115/regtable"
)

// I2CAddr is the default I²C address (SADDR strapped low).
const I2CAddr uint16 = 0x3C

var (
	// ErrNoDevice is returned when no bus is attached to the device.
	ErrNoDevice = errors.New("mt9d115: no device attached")

	// ErrTransfer is returned when a bus transaction did not complete.
	ErrTransfer = errors.New("mt9d115: i2c transfer failed")

	// ErrInvalidResolution is returned for a resolution outside the
	// supported modes.
	ErrInvalidResolution = errors.New("mt9d115: invalid resolution")

	// ErrUnknownItem is returned for an unknown effect item.
	ErrUnknownItem = errors.New("mt9d115: unknown effect item")

	// ErrPollTimeout is returned when the sensor never reached the
	// expected sequencer state.
	ErrPollTimeout = errors.New("mt9d115: status poll timed out")

	// ErrBusy is returned by Open while another session is open.
	ErrBusy = errors.New("mt9d115: session already open")

	// ErrClosed is returned when a closed session is used.
	ErrClosed = errors.New("mt9d115: session closed")
)

// Opts is the configuration for the MT9D115 sensor.
type Opts struct {
	// Bus addressing
	Addr  uint16           // I²C address (default: I2CAddr)
	Speed physic.Frequency // Bus speed (default: leave the bus as configured)

	// Bus retry policy
	MaxRetries int           // Write retries after the first attempt (default: 3, negative: none)
	RetryDelay time.Duration // Pause between write attempts (default: 20ms)

	// Sequencer polling
	PollDelay    time.Duration // Pause before each status read (default: 50ms)
	PollAttempts int           // Status reads per check (default: 50)

	// StrictInit makes SetMode fail when the sensor does not report
	// preview state after the first-time init table. By default the
	// failure is logged and the mode change goes on.
	StrictInit bool

	// Optional power control. Standby is driven low on Open and high on
	// Close; PowerOn and PowerOff are called once per Open and Close.
	Standby  gpio.PinOut
	PowerOn  func() error
	PowerOff func() error

	// Logger receives diagnostics (default: log.Default()).
	Logger *log.Logger
}

// Dev is the device handle for the MT9D115 sensor.
//
// A Dev holds the bus connection and the board tables. The mutable sensor
// state lives in the Session returned by Open; at most one Session is open
// at a time.
type Dev struct {
	c    conn.Conn
	opts Opts
	log  *log.Logger

	// Tables, resolved once in NewI2C.
	init          regtable.Table
	backToPreview regtable.Table
	modes         map[Mode]regtable.Table
	items         map[Item]itemTables

	sleep func(time.Duration)

	mu      sync.Mutex
	session *Session
}

// NewI2C returns a handle to an MT9D115 on the I²C bus b.
//
// tables must contain the init, back-to-preview and per-mode tables, and
// every effect table SetEffect can select. The sensor itself is not touched
// until a Session sets a mode.
//
// opts can be nil to use defaults.
func NewI2C(b i2c.Bus, tables *regtable.Set, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, ErrNoDevice
	}
	if tables == nil {
		return nil, errors.New("mt9d115: no register tables")
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("mt9d115: %w", err)
	}

	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if err := o.setDefaults(); err != nil {
		return nil, err
	}

	if o.Speed != 0 {
		if err := b.SetSpeed(o.Speed); err != nil {
			return nil, fmt.Errorf("mt9d115: failed to set bus speed: %w", err)
		}
	}

	modes, err := resolveModes(tables)
	if err != nil {
		return nil, err
	}
	items, err := resolveItems(tables)
	if err != nil {
		return nil, err
	}

	return &Dev{
		c:             &i2c.Dev{Bus: b, Addr: o.Addr},
		opts:          o,
		log:           o.Logger,
		init:          tables.Init,
		backToPreview: tables.BackToPreview,
		modes:         modes,
		items:         items,
		sleep:         time.Sleep,
	}, nil
}

func (o *Opts) setDefaults() error {
	if o.Addr == 0 {
		o.Addr = I2CAddr
	}
	if o.Addr > 0x7F {
		return errors.New("mt9d115: address must be a 7-bit value")
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = 3
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 20 * time.Millisecond
	}
	if o.PollDelay <= 0 {
		o.PollDelay = 50 * time.Millisecond
	}
	if o.PollAttempts <= 0 {
		o.PollAttempts = 50
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// Open powers the sensor up and starts a session. The session starts
// uninitialized: its first SetMode runs the init table.
func (d *Dev) Open() (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		return nil, ErrBusy
	}
	if err := d.powerOn(); err != nil {
		return nil, err
	}
	d.session = &Session{d: d}
	return d.session, nil
}

// Halt closes the open session, if any, powering the sensor down.
//
// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()
	if s == nil {
		return nil
	}
	// The session may have been closed since it was read.
	if err := s.Close(); !errors.Is(err, ErrClosed) {
		return err
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("mt9d115.Dev{%s}", d.c)
}

// release drops s as the open session.
func (d *Dev) release(s *Session) {
	d.mu.Lock()
	if d.session == s {
		d.session = nil
	}
	d.mu.Unlock()
}

func (d *Dev) powerOn() error {
	if d.opts.Standby != nil {
		if err := d.opts.Standby.Out(gpio.Low); err != nil {
			return fmt.Errorf("mt9d115: failed to pull STANDBY low: %w", err)
		}
	}
	if d.opts.PowerOn != nil {
		if err := d.opts.PowerOn(); err != nil {
			err = fmt.Errorf("mt9d115: power on: %w", err)
			if d.opts.Standby != nil {
				if serr := d.opts.Standby.Out(gpio.High); serr != nil {
					err = errors.Join(err, fmt.Errorf("mt9d115: failed to pull STANDBY high: %w", serr))
				}
			}
			return err
		}
	}
	return nil
}

func (d *Dev) powerOff() error {
	var errs []error
	if d.opts.PowerOff != nil {
		if err := d.opts.PowerOff(); err != nil {
			errs = append(errs, fmt.Errorf("mt9d115: power off: %w", err))
		}
	}
	if d.opts.Standby != nil {
		if err := d.opts.Standby.Out(gpio.High); err != nil {
			errs = append(errs, fmt.Errorf("mt9d115: failed to pull STANDBY high: %w", err))
		}
	}
	return errors.Join(errs...)
}

var _ conn.Resource = &Dev{}
