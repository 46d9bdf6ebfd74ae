package mt9d115

import "sync"

// Session is one open use of the sensor, from Dev.Open to Close.
//
// The sensor loses its configuration across power cycles, so every session
// starts uninitialized and its first SetMode runs the init table. Session
// methods are safe for concurrent use; they are serialized.
type Session struct {
	d *Dev

	mu          sync.Mutex
	mode        Mode
	initialized bool
	closed      bool
}

// SetMode switches the sensor output to w×h and waits for the sequencer to
// settle.
//
// On the first call of a session the init table runs first. The sensor
// should report preview state after it; if it does not, the failure is
// logged and ignored unless Opts.StrictInit is set.
//
// On error the sensor may be partially programmed. Calling SetMode again
// with the same arguments is safe.
func (s *Session) SetMode(w, h int) error {
	m, err := ModeFor(w, h)
	if err != nil {
		s.d.log.Printf("%v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	d := s.d
	d.log.Printf("mt9d115: set mode %s", m)

	if !s.initialized {
		if err := d.applyTable(d.init); err != nil {
			return err
		}
		if _, err := d.pollStatus(seqStatePreview); err != nil {
			if d.opts.StrictInit {
				return err
			}
			d.log.Printf("mt9d115: ignoring init status: %v", err)
		}
	}

	if err := d.applyTable(d.modes[m]); err != nil {
		return err
	}

	want := m.seqState()
	if s.initialized && want == seqStatePreview {
		if err := d.applyTable(d.backToPreview); err != nil {
			return err
		}
	}

	if _, err := d.pollStatus(want); err != nil {
		return err
	}

	s.initialized = true
	s.mode = m
	return nil
}

// SetEffect applies value to item. Values without a table of their own
// select the item's default (no effect, auto white balance, brightness 0,
// auto scene).
//
// No status poll follows; the session state is unchanged.
func (s *Session) SetEffect(item Item, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	t, err := s.d.effectTable(item, value)
	if err != nil {
		return err
	}
	s.d.log.Printf("mt9d115: set %s %d", item, value)
	return s.d.applyTable(t)
}

// Status reports the sensor health. It currently only checks that the
// session is open.
func (s *Session) Status() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Mode returns the current mode. ok is false until a SetMode succeeded.
func (s *Session) Mode() (m Mode, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.initialized
}

// Close powers the sensor down and ends the session. The next session
// starts uninitialized.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.initialized = false
	err := s.d.powerOff()
	s.d.release(s)
	return err
}
