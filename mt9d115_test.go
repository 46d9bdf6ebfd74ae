package mt9d115

import (
	"errors"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mt9d115/regtable"
)

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"explicit default address", &Opts{Addr: I2CAddr}, false},
		{"alternate address", &Opts{Addr: 0x3D}, false},
		{"address beyond 7 bits", &Opts{Addr: 0x80}, true},
		{"no retries", &Opts{MaxRetries: -1}, false},
		{"strict init", &Opts{StrictInit: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewI2C(&fakeBus{}, testTables(), tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewI2C() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptsDefaults(t *testing.T) {
	o := Opts{}
	if err := o.setDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Addr != I2CAddr {
		t.Errorf("Addr = %#x, want %#x", o.Addr, I2CAddr)
	}
	if o.MaxRetries != 3 || o.RetryDelay != 20*time.Millisecond {
		t.Errorf("retry policy = %d/%v, want 3/20ms", o.MaxRetries, o.RetryDelay)
	}
	if o.PollAttempts != 50 || o.PollDelay != 50*time.Millisecond {
		t.Errorf("poll policy = %d/%v, want 50/50ms", o.PollAttempts, o.PollDelay)
	}
	if o.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}

	o = Opts{MaxRetries: -1}
	_ = o.setDefaults()
	if o.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 for a negative value", o.MaxRetries)
	}
}

func TestNewI2CErrors(t *testing.T) {
	if _, err := NewI2C(nil, testTables(), nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("NewI2C(nil bus) = %v, want ErrNoDevice", err)
	}
	if _, err := NewI2C(&fakeBus{}, nil, nil); err == nil {
		t.Error("NewI2C(nil tables) should fail")
	}

	tests := []struct {
		name   string
		modify func(s *regtable.Set)
		want   string
	}{
		{"no init", func(s *regtable.Set) { s.Init = nil }, "init"},
		{"missing mode", func(s *regtable.Set) { delete(s.Modes, "800x600") }, "modes/800x600"},
		{"empty mode", func(s *regtable.Set) { s.Modes["640x480"] = regtable.Table{regtable.Delay(1)} }, "modes/640x480"},
		{"missing effect fallback", func(s *regtable.Set) { delete(s.Effect, "none") }, "effect/none"},
		{"missing white balance", func(s *regtable.Set) { delete(s.WhiteBalance, "sunlight") }, "wb/sunlight"},
		{"no scene tables", func(s *regtable.Set) { s.Scene = nil }, "scene/night"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testTables()
			tt.modify(s)
			_, err := NewI2C(&fakeBus{}, s, nil)
			if !errors.Is(err, regtable.ErrMissing) {
				t.Fatalf("NewI2C() = %v, want ErrMissing", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("NewI2C() = %q, should name %q", err, tt.want)
			}
		})
	}
}

func TestNewI2CSetsSpeed(t *testing.T) {
	bus := &fakeBus{}
	if _, err := NewI2C(bus, testTables(), &Opts{Speed: 400 * physic.KiloHertz}); err != nil {
		t.Fatal(err)
	}
	if bus.speed != 400*physic.KiloHertz {
		t.Errorf("bus speed = %v, want 400kHz", bus.speed)
	}
	if bus.txs != 0 {
		t.Errorf("NewI2C made %d transactions, want none", bus.txs)
	}
}

func TestDevString(t *testing.T) {
	d := newTestDev(t, &fakeBus{}, nil)
	got := d.String()
	if !strings.HasPrefix(got, "mt9d115.Dev{") || !strings.Contains(got, "fake") {
		t.Errorf("String() = %q, want mt9d115.Dev{fake...}", got)
	}
}

func TestOpenBusy(t *testing.T) {
	d := newTestDev(t, &fakeBus{}, nil)
	s, err := d.Open()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Open(); !errors.Is(err, ErrBusy) {
		t.Errorf("second Open() = %v, want ErrBusy", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Open(); err != nil {
		t.Errorf("Open() after Close() = %v", err)
	}
}

func TestPowerSequencing(t *testing.T) {
	pin := &gpiotest.Pin{N: "STANDBY"}
	var on, off int
	d := newTestDev(t, &fakeBus{}, &Opts{
		Standby:  pin,
		PowerOn:  func() error { on++; return nil },
		PowerOff: func() error { off++; return nil },
	})

	s, err := d.Open()
	if err != nil {
		t.Fatal(err)
	}
	if pin.Read() != gpio.Low {
		t.Error("STANDBY should be low while a session is open")
	}
	if on != 1 || off != 0 {
		t.Errorf("after Open: power on/off calls = %d/%d, want 1/0", on, off)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if pin.Read() != gpio.High {
		t.Error("STANDBY should be high after Close")
	}
	if on != 1 || off != 1 {
		t.Errorf("after Close: power on/off calls = %d/%d, want 1/1", on, off)
	}
}

func TestPowerHookErrors(t *testing.T) {
	boom := errors.New("regulator")

	pin := &gpiotest.Pin{N: "STANDBY"}
	d := newTestDev(t, &fakeBus{}, &Opts{Standby: pin, PowerOn: func() error { return boom }})
	if _, err := d.Open(); !errors.Is(err, boom) {
		t.Errorf("Open() = %v, want power on error", err)
	}
	if pin.Read() != gpio.High {
		t.Error("STANDBY should be back high after a failed power on")
	}
	if _, err := d.Open(); errors.Is(err, ErrBusy) {
		t.Error("a failed Open() should not keep the session")
	}

	d = newTestDev(t, &fakeBus{}, &Opts{PowerOff: func() error { return boom }})
	s, err := d.Open()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() = %v, want power off error", err)
	}
	if _, err := d.Open(); err != nil {
		t.Errorf("Open() after a failed power off = %v, the session should be released", err)
	}
}

func TestDevHalt(t *testing.T) {
	d := newTestDev(t, &fakeBus{}, nil)

	if err := d.Halt(); err != nil {
		t.Errorf("Halt() without a session = %v", err)
	}

	s, err := d.Open()
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatalf("Halt() = %v", err)
	}

	// Operations fail once halted.
	if err := s.SetMode(640, 480); !errors.Is(err, ErrClosed) {
		t.Errorf("SetMode() = %v, want ErrClosed", err)
	}
	if err := s.SetEffect(ItemEffect, EffectMono); !errors.Is(err, ErrClosed) {
		t.Errorf("SetEffect() = %v, want ErrClosed", err)
	}
	if err := s.Status(); !errors.Is(err, ErrClosed) {
		t.Errorf("Status() = %v, want ErrClosed", err)
	}
	if err := s.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Close() = %v, want ErrClosed", err)
	}
	if d.bus.txs != 0 {
		t.Errorf("closed session made %d transactions", d.bus.txs)
	}
}

func TestDevHaltAfterClose(t *testing.T) {
	d := newTestDev(t, &fakeBus{}, nil)
	s, err := d.Open()
	if err != nil {
		t.Fatal(err)
	}

	// Close ran after Halt picked up the session but before the
	// session was released.
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if err := d.Halt(); err != nil {
		t.Errorf("Halt() of a closed session = %v, want nil", err)
	}
}
