package mt9d115

import (
	"fmt"
	"image"

	"periph.io/x/devices/v3/mt9d115/regtable"
)

// Mode is an output resolution supported by the sensor.
type Mode int

const (
	Mode1600x1200 Mode = iota // UXGA capture
	Mode1280x720              // 720p capture
	Mode800x600               // SVGA preview
	Mode640x480               // VGA preview
)

var modeSizes = [...]image.Point{
	Mode1600x1200: {1600, 1200},
	Mode1280x720:  {1280, 720},
	Mode800x600:   {800, 600},
	Mode640x480:   {640, 480},
}

// ModeFor returns the mode producing exactly w×h pixels.
func ModeFor(w, h int) (Mode, error) {
	for m, sz := range modeSizes {
		if sz.X == w && sz.Y == h {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %dx%d", ErrInvalidResolution, w, h)
}

// Size returns the output resolution of m.
func (m Mode) Size() image.Point {
	if m < 0 || int(m) >= len(modeSizes) {
		return image.Point{}
	}
	return modeSizes[m]
}

func (m Mode) String() string {
	sz := m.Size()
	return fmt.Sprintf("%dx%d", sz.X, sz.Y)
}

// seqState is the sequencer state the sensor settles in once m is applied.
// The two largest modes run the capture context, the others preview.
func (m Mode) seqState() uint16 {
	switch m {
	case Mode1600x1200, Mode1280x720:
		return seqStateCapture
	default:
		return seqStatePreview
	}
}

func resolveModes(s *regtable.Set) (map[Mode]regtable.Table, error) {
	modes := make(map[Mode]regtable.Table, len(modeSizes))
	var missing []string
	for m := range modeSizes {
		name := Mode(m).String()
		t, ok := s.Modes[name]
		if !ok || t.Writes() == 0 {
			missing = append(missing, "modes/"+name)
			continue
		}
		modes[Mode(m)] = t
	}
	if len(missing) != 0 {
		return nil, missingTables(missing)
	}
	return modes, nil
}
