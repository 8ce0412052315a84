package vm

import (
	"bufio"
	"io"
)

// Keyboard hides the host-dependent, non-blocking character source behind
// a two-method capability: Poll reports whether a character is ready
// without consuming it (the KBSR read), and Next consumes one (the KBDR
// read, and the blocking GETC/IN trap routines, which spin on Poll before
// calling Next).
type Keyboard interface {
	Poll() bool
	Next() byte
}

// StdinKeyboard drains an io.Reader (ordinarily os.Stdin) on its own
// goroutine into a buffered channel, so Poll never blocks on the host
// file descriptor. One StdinKeyboard owns its reader for the lifetime of
// the VM that holds it; it is never shared across VM instances, avoiding
// the data race a single process-wide stdin reader would invite.
type StdinKeyboard struct {
	ch          chan byte
	pending     *byte
	havePending bool
}

// NewStdinKeyboard starts the reader goroutine over r and returns the
// keyboard.
func NewStdinKeyboard(r io.Reader) *StdinKeyboard {
	k := &StdinKeyboard{ch: make(chan byte, 1)}
	go func() {
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				close(k.ch)
				return
			}
			k.ch <- b
		}
	}()
	return k
}

// Poll reports whether a character is buffered and ready.
func (k *StdinKeyboard) Poll() bool {
	if k.havePending {
		return true
	}
	select {
	case b, ok := <-k.ch:
		if !ok {
			return false
		}
		// Peek without losing the byte: push it back onto a
		// single-slot buffer ahead of the channel read in Next.
		k.pushback(b)
		return true
	default:
		return false
	}
}

// pushback implements the one-byte lookahead so Poll can observe a
// character without consuming it.
func (k *StdinKeyboard) pushback(b byte) {
	if k.pending == nil {
		k.pending = new(byte)
	}
	*k.pending = b
	k.havePending = true
}

// Next blocks until a character is available, then consumes and returns
// it.
func (k *StdinKeyboard) Next() byte {
	if k.havePending {
		k.havePending = false
		return *k.pending
	}
	b, ok := <-k.ch
	if !ok {
		return 0
	}
	return b
}

// QueueKeyboard is the test-mode keyboard: a pre-seeded queue of bytes,
// consumed in order, with no goroutine.
type QueueKeyboard struct {
	bytes []byte
	pos   int
}

// NewQueueKeyboard returns a Keyboard that serves seeded in order.
func NewQueueKeyboard(seeded []byte) *QueueKeyboard {
	return &QueueKeyboard{bytes: seeded}
}

func (q *QueueKeyboard) Poll() bool {
	return q.pos < len(q.bytes)
}

func (q *QueueKeyboard) Next() byte {
	if q.pos >= len(q.bytes) {
		return 0
	}
	b := q.bytes[q.pos]
	q.pos++
	return b
}
