package fluke45

import (
	"time"

	"github.com/allbin/go-fluke45/serialport"
)

// Transport is the slice of a serial connection the protocol needs.
// serialport.Port satisfies it.
type Transport interface {
	Write(data []byte) (int, error)
	// Drain blocks until written data has left the output queue.
	Drain() error
	// ReadLine blocks until a full line (terminator included) has arrived.
	ReadLine() ([]byte, error)
	// InWaiting returns the number of received bytes not yet read.
	InWaiting() (int, error)
	ResetInputBuffer() error
	Close() error
}

// Opener opens a transport to device.
type Opener func(device string, baudRate int, timeout time.Duration) (Transport, error)

// Lister enumerates candidate device identifiers.
type Lister func() ([]string, error)

var _ Transport = (serialport.Port)(nil)

// openSerial opens a real serial port. The port's own read timeout only has
// to outlast a partially received line; waiting for a reply to start is done
// by polling InWaiting.
func openSerial(device string, baudRate int, timeout time.Duration) (Transport, error) {
	readTimeout := timeout.Truncate(100 * time.Millisecond)
	if readTimeout < 100*time.Millisecond {
		readTimeout = 100 * time.Millisecond
	}
	if readTimeout > 25500*time.Millisecond {
		readTimeout = 25500 * time.Millisecond
	}

	port, err := serialport.Open(device,
		serialport.WithBaudRate(baudRate),
		serialport.WithReadTimeout(readTimeout),
	)
	if err != nil {
		return nil, err
	}
	return port, nil
}
