//go:build !linux

package serialport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// pumpInterval bounds how long the pump blocks in a single driver read so
// Close can stop it promptly.
const pumpInterval = 100 * time.Millisecond

// port wraps a go.bug.st/serial port. A pump goroutine moves received bytes
// into lines so InWaiting can be answered without a driver query.
type port struct {
	mu     sync.Mutex
	cond   *sync.Cond
	sp     serial.Port
	config Config
	closed bool
	lines  lineBuffer
	// readErr is the driver failure that stopped the pump. It stays set.
	readErr error
	// overflow is reported once by the next ReadLine.
	overflow error
	done     chan struct{}
}

var _ Port = (*port)(nil)

func openPort(device string, config Config) (Port, error) {
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		Parity:   toBugstParity(config.Parity),
		StopBits: serial.OneStopBit,
	}
	if config.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	sp, err := serial.Open(device, mode)
	if err != nil {
		return nil, mapOpenError(device, err)
	}
	if err := sp.SetReadTimeout(pumpInterval); err != nil {
		sp.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return newPort(sp, config), nil
}

// newPort starts the pump on an opened driver port.
func newPort(sp serial.Port, config Config) *port {
	p := &port{
		sp:     sp,
		config: config,
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.pump()
	return p
}

func toBugstParity(parity Parity) serial.Parity {
	switch parity {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	case ParityMark:
		return serial.MarkParity
	case ParitySpace:
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func mapOpenError(device string, err error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.InvalidSerialPort:
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
		case serial.PermissionDenied:
			return fmt.Errorf("%w: %s", ErrPermissionDenied, device)
		case serial.PortBusy:
			return fmt.Errorf("%w: %s", ErrDeviceInUse, device)
		case serial.InvalidSpeed:
			return ErrInvalidBaudRate
		}
	}
	return fmt.Errorf("failed to open %s: %w", device, err)
}

func (p *port) pump() {
	defer close(p.done)

	chunk := make([]byte, 256)
	for {
		n, err := p.sp.Read(chunk)

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		if err != nil {
			p.readErr = err
			p.cond.Broadcast()
			p.mu.Unlock()
			return
		}
		if n > 0 {
			if err := p.lines.append(chunk[:n]); err != nil {
				p.overflow = err
			}
			p.cond.Broadcast()
		}
		p.mu.Unlock()
	}
}

// waitLocked blocks until the pump signals or the deadline passes.
func (p *port) waitLocked(deadline time.Time) bool {
	if time.Now().After(deadline) {
		return false
	}
	timer := time.AfterFunc(time.Until(deadline), func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	p.cond.Wait()
	timer.Stop()
	return true
}

func (p *port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPortClosed
	}
	p.closed = true
	p.lines.reset()
	p.cond.Broadcast()
	p.mu.Unlock()

	err := p.sp.Close()
	<-p.done
	return err
}

func (p *port) Write(data []byte) (int, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, ErrPortClosed
	}
	return p.sp.Write(data)
}

func (p *port) ReadLine() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	deadline := time.Now().Add(p.config.ReadTimeout)
	for {
		if p.closed {
			return nil, ErrPortClosed
		}
		if line, ok := p.lines.next(); ok {
			return line, nil
		}
		if p.overflow != nil {
			err := p.overflow
			p.overflow = nil
			return nil, err
		}
		if p.readErr != nil {
			return nil, p.readErr
		}
		if !p.waitLocked(deadline) {
			if line := p.lines.rest(); line != nil {
				return line, nil
			}
			return nil, ErrReadTimeout
		}
	}
}

func (p *port) InWaiting() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if n := p.lines.len(); n > 0 || p.readErr == nil {
		return n, nil
	}
	return 0, p.readErr
}

func (p *port) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	p.lines.reset()
	return p.sp.ResetInputBuffer()
}

func (p *port) Drain() error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPortClosed
	}
	return p.sp.Drain()
}
