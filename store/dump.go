package store

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// Dump pretty-prints every block header for troubleshooting, grounded on
// the teacher's use of spew.Dump on decoded disk headers. It is a
// demo/test convenience, never called from the hot Put/Get/GC paths.
func (s *Store) Dump() string {
	out := fmt.Sprintf("store: %d blocks, active=%d\n", s.geo.TotalBlocks, s.activeBlockIndex)

	for i := 0; i < s.geo.TotalBlocks; i++ {
		bh, err := s.readBlockHeader(i)
		if err != nil {
			out += color.RedString("  block %d: invalid header (%v)\n", i, err)
			continue
		}

		marker := ""
		if uint16(i) == s.activeBlockIndex {
			marker = color.GreenString(" <- active")
		}

		out += fmt.Sprintf("  block %d:%s\n%s", i, marker, spew.Sdump(bh))
	}

	return out
}
