package regtable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load decodes and validates a JSON table set.
func Load(r io.Reader) (*Set, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	s := &Set{}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("regtable: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads a JSON table set from path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("regtable: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// UnmarshalJSON accepts ["0x098C", "0xA104"], ["wait", 10] and ["end"].
// Words may be JSON numbers or strings in any base strconv understands.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("regtable: entry %s: %w", b, err)
	}
	if len(raw) == 0 || len(raw) > 2 {
		return fmt.Errorf("regtable: entry %s: want 1 or 2 elements", b)
	}

	var head string
	if json.Unmarshal(raw[0], &head) == nil && strings.EqualFold(head, "end") {
		if len(raw) != 1 {
			return fmt.Errorf("regtable: entry %s: end takes no value", b)
		}
		*e = Entry{Addr: End}
		return nil
	}
	if len(raw) != 2 {
		return fmt.Errorf("regtable: entry %s: missing value", b)
	}

	addr, err := parseWord(raw[0])
	if err != nil {
		return fmt.Errorf("regtable: entry %s: address: %w", b, err)
	}
	val, err := parseWord(raw[1])
	if err != nil {
		return fmt.Errorf("regtable: entry %s: value: %w", b, err)
	}
	*e = Entry{Addr: addr, Val: val}
	return nil
}

// parseWord decodes a 16-bit word given as a JSON number or string.
func parseWord(raw json.RawMessage) (uint16, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) != 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		if strings.EqualFold(s, "wait") {
			return Wait, nil
		}
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return 0, err
		}
		return uint16(v), nil
	}
	var v uint16
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}
