package serialport

import (
	"bytes"
	"fmt"
)

// maxLineLength bounds ReadLine so a device that never sends a terminator
// cannot grow the buffer without limit.
const maxLineLength = 4096

// Port represents a serial port connection interface
type Port interface {
	Write(data []byte) (int, error)
	Close() error

	// ReadLine blocks until a '\n' arrives or the read timeout expires and
	// returns the line including its terminator. On timeout whatever was
	// received is returned; ErrReadTimeout is only returned when nothing was.
	ReadLine() ([]byte, error)
	// InWaiting returns the number of received bytes not yet read.
	InWaiting() (int, error)
	// ResetInputBuffer discards any unread input data.
	ResetInputBuffer() error
	// Drain waits until all output written to the port has been transmitted.
	Drain() error
}

// Open opens a serial port with the given device path and options
func Open(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	return openPort(device, config)
}

// lineBuffer accumulates raw reads and hands out complete lines.
type lineBuffer struct {
	buf []byte
}

// next pops one line (terminator included) if a complete one is buffered.
func (lb *lineBuffer) next() ([]byte, bool) {
	i := bytes.IndexByte(lb.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := make([]byte, i+1)
	copy(line, lb.buf[:i+1])
	lb.buf = lb.buf[i+1:]
	return line, true
}

// rest pops everything buffered.
func (lb *lineBuffer) rest() []byte {
	if len(lb.buf) == 0 {
		return nil
	}
	line := lb.buf
	lb.buf = nil
	return line
}

func (lb *lineBuffer) append(p []byte) error {
	lb.buf = append(lb.buf, p...)
	if len(lb.buf) > maxLineLength && bytes.IndexByte(lb.buf, '\n') < 0 {
		lb.buf = nil
		return fmt.Errorf("%w (%d bytes)", ErrLineTooLong, maxLineLength)
	}
	return nil
}

func (lb *lineBuffer) len() int {
	return len(lb.buf)
}

func (lb *lineBuffer) reset() {
	lb.buf = nil
}
