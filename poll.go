package mt9d115

import (
	"fmt"

	"periph.io/x/devices/v3/mt9d115/retry"
)

// The firmware exposes its variables through an address/data register pair.
const (
	regMCUAddr = 0x098C
	regMCUData = 0x0990

	varSeqState = 0xA104 // seq.state
)

// Sequencer states reported through varSeqState.
const (
	seqStatePreview uint16 = 3
	seqStateCapture uint16 = 7
)

// PollOutcome describes one status poll.
type PollOutcome struct {
	Converged bool
	Last      uint16 // Last value read (0 if no read succeeded)
	Attempts  int
}

// pollStatus waits for the sequencer to report expected. A failed bus
// access only costs its attempt.
func (d *Dev) pollStatus(expected uint16) (PollOutcome, error) {
	var out PollOutcome
	err := d.pollPolicy().Do(func(i int) (bool, error) {
		out.Attempts = i + 1
		if err := d.writeReg(regMCUAddr, varSeqState); err != nil {
			return false, err
		}
		v, err := d.readReg(regMCUData)
		if err != nil {
			return false, err
		}
		out.Last = v
		return v == expected, nil
	})
	if err != nil {
		d.log.Printf("mt9d115: status poll fail, last read %d", out.Last)
		// Failed reads only cost their attempt; the timeout is the error.
		return out, fmt.Errorf("%w: want %d, last read %d: %v", ErrPollTimeout, expected, out.Last, err)
	}
	out.Converged = true
	d.log.Printf("mt9d115: status poll success on attempt %d", out.Attempts)
	return out, nil
}

func (d *Dev) pollPolicy() retry.Policy {
	return retry.Policy{
		Attempts:   d.opts.PollAttempts,
		Delay:      d.opts.PollDelay,
		SleepFirst: true,
		Sleep:      d.sleep,
	}
}
