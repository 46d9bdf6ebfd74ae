package mt9d115

import (
	"fmt"
	"time"

	"periph.io/x/devices/v3/mt9d115/regtable"
)

// WriteError reports the table entry whose write aborted a table. Entries
// before Index were written; none after it were.
type WriteError struct {
	Index int
	Entry regtable.Entry
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("mt9d115: table entry %d (%s): %v", e.Index, e.Entry, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// applyTable executes t in order. It stops at the first failed write; there
// is no rollback.
func (d *Dev) applyTable(t regtable.Table) error {
	for i, e := range t {
		switch {
		case e.IsEnd():
			return nil
		case e.IsWait():
			d.sleep(time.Duration(e.Val) * time.Millisecond)
			continue
		}
		if err := d.writeReg(e.Addr, e.Val); err != nil {
			return &WriteError{Index: i, Entry: e, Err: err}
		}
	}
	return nil
}
