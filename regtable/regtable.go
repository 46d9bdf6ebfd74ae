// Package regtable holds the register tables that program an MT9D115 sensor.
//
// A table is an ordered list of 16-bit (address, value) writes. Two
// addresses are reserved: Wait makes the interpreter pause for Val
// milliseconds, End stops it. Table contents come from the board
// configuration and are treated as opaque data.
//
// Boards usually ship their tables as JSON:
//
//	{
//		"init": [["0x001A", "0x0051"], ["wait", 10], ["0x001A", "0x0050"], ["end"]],
//		"back_to_preview": [["0x098C", "0xA115"], ["0x0990", "0x0000"]],
//		"modes": {"640x480": [["0x098C", "0x2703"], ["0x0990", "0x0280"]]},
//		"effect": {"none": [["0x098C", "0x2759"], ["0x0990", "0x6440"]]}
//	}
package regtable

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved addresses.
const (
	Wait uint16 = 0x0000 // Val is a delay in milliseconds
	End  uint16 = 0x0001 // End of table
)

// Entry is one step of a table.
type Entry struct {
	Addr uint16
	Val  uint16
}

// Delay returns a Wait entry pausing for ms milliseconds.
func Delay(ms uint16) Entry {
	return Entry{Addr: Wait, Val: ms}
}

// IsWait reports whether e is a delay.
func (e Entry) IsWait() bool { return e.Addr == Wait }

// IsEnd reports whether e terminates its table.
func (e Entry) IsEnd() bool { return e.Addr == End }

func (e Entry) String() string {
	switch e.Addr {
	case Wait:
		return fmt.Sprintf("wait %dms", e.Val)
	case End:
		return "end"
	}
	return fmt.Sprintf("%04X=%04X", e.Addr, e.Val)
}

// Table is an ordered sequence of entries. Entries after an End entry are
// never executed.
type Table []Entry

// Writes returns the number of register writes the table performs.
func (t Table) Writes() int {
	n := 0
	for _, e := range t {
		if e.IsEnd() {
			break
		}
		if !e.IsWait() {
			n++
		}
	}
	return n
}

// Set is the complete table bundle for one board.
//
// Mode tables are keyed by resolution ("640x480"); effect tables by value
// name ("mono", "sunlight", "p1", "night", ...).
type Set struct {
	Init          Table            `json:"init"`
	BackToPreview Table            `json:"back_to_preview"`
	Modes         map[string]Table `json:"modes"`
	Effect        map[string]Table `json:"effect"`
	WhiteBalance  map[string]Table `json:"white_balance"`
	Brightness    map[string]Table `json:"brightness"`
	Scene         map[string]Table `json:"scene"`
}

// ErrMissing is wrapped by Validate for every required table that is absent.
var ErrMissing = errors.New("regtable: missing table")

// Validate checks that the tables every sensor session needs are present.
// Per-mode and per-effect tables are checked by the driver, which knows
// which names it resolves.
func (s *Set) Validate() error {
	var missing []string
	if s.Init.Writes() == 0 {
		missing = append(missing, "init")
	}
	if s.BackToPreview.Writes() == 0 {
		missing = append(missing, "back_to_preview")
	}
	if len(s.Modes) == 0 {
		missing = append(missing, "modes")
	}
	if len(missing) != 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}
