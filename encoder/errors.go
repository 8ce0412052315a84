package encoder

import (
	"fmt"

	"github.com/lookbusy1344/lc3-toolchain/parser"
)

// Error reports an encode-time failure at a specific instruction.
type Error struct {
	Line    int
	Kind    parser.ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
}
