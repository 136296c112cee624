//go:build !linux

package serialport

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.bug.st/serial"
)

// fakeDriver stands in for a go.bug.st/serial port. Bytes passed to feed
// are returned by Read; fail makes the next Read return err.
type fakeDriver struct {
	serial.Port

	mu      sync.Mutex
	pending []byte
	err     error
	written []byte

	closing chan struct{}
	once    sync.Once
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{closing: make(chan struct{})}
}

func (d *fakeDriver) feed(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, s...)
}

func (d *fakeDriver) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *fakeDriver) Read(p []byte) (int, error) {
	select {
	case <-d.closing:
		return 0, errors.New("port has been closed")
	case <-time.After(2 * time.Millisecond):
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return 0, d.err
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *fakeDriver) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written = append(d.written, p...)
	return len(p), nil
}

func (d *fakeDriver) Drain() error            { return nil }
func (d *fakeDriver) ResetInputBuffer() error { return nil }

func (d *fakeDriver) Close() error {
	d.once.Do(func() { close(d.closing) })
	return nil
}

func newTestPort(readTimeout time.Duration) (*port, *fakeDriver) {
	config := DefaultConfig()
	config.ReadTimeout = readTimeout
	d := newFakeDriver()
	return newPort(d, config), d
}

// waitInWaiting polls until at least n bytes are buffered.
func waitInWaiting(t *testing.T, p *port, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		got, err := p.InWaiting()
		if err != nil {
			t.Fatalf("InWaiting failed: %v", err)
		}
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Expected %d bytes waiting within 1s", n)
}

func TestPumpedReadLine(t *testing.T) {
	p, d := newTestPort(time.Second)
	defer p.Close()

	d.feed("FLUKE 45\r\n=>\r\n")
	waitInWaiting(t, p, 14)

	for _, want := range []string{"FLUKE 45\r\n", "=>\r\n"} {
		line, err := p.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if string(line) != want {
			t.Errorf("Expected %q, got %q", want, line)
		}
	}
}

func TestPumpedReadLineTimeout(t *testing.T) {
	p, d := newTestPort(50 * time.Millisecond)
	defer p.Close()

	if _, err := p.ReadLine(); !errors.Is(err, ErrReadTimeout) {
		t.Errorf("Expected ErrReadTimeout, got %v", err)
	}

	d.feed("+1.23")
	waitInWaiting(t, p, 5)

	line, err := p.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if string(line) != "+1.23" {
		t.Errorf("Expected the partial line, got %q", line)
	}
}

func TestPumpedReadErrorSurfaces(t *testing.T) {
	p, d := newTestPort(time.Second)
	defer p.Close()

	unplugged := errors.New("device not configured")
	d.fail(unplugged)

	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		if _, err = p.InWaiting(); err != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !errors.Is(err, unplugged) {
		t.Fatalf("Expected InWaiting to report the read failure, got %v", err)
	}

	if _, err := p.ReadLine(); !errors.Is(err, unplugged) {
		t.Errorf("Expected ReadLine to report the read failure, got %v", err)
	}
	if _, err := p.InWaiting(); !errors.Is(err, unplugged) {
		t.Errorf("Expected the read failure to persist, got %v", err)
	}
}

func TestPumpedLineTooLong(t *testing.T) {
	p, d := newTestPort(time.Second)
	defer p.Close()

	d.feed(strings.Repeat("x", maxLineLength+1))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		overflow := p.overflow
		p.mu.Unlock()
		if overflow != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := p.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("Expected ErrLineTooLong, got %v", err)
	}

	d.feed("=>\r\n")
	waitInWaiting(t, p, 4)
	line, err := p.ReadLine()
	if err != nil || string(line) != "=>\r\n" {
		t.Errorf("Expected the port to recover, got %q, %v", line, err)
	}
}

func TestCloseUnblocksReadLine(t *testing.T) {
	p, _ := newTestPort(10 * time.Second)

	result := make(chan error, 1)
	go func() {
		_, err := p.ReadLine()
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("Expected ErrPortClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadLine still blocked after Close")
	}

	if err := p.Close(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed on second Close, got %v", err)
	}
	if _, err := p.Write([]byte("*IDN?\r\n")); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed on Write, got %v", err)
	}
	if _, err := p.InWaiting(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed on InWaiting, got %v", err)
	}
}

func TestPumpedWriteAndDrain(t *testing.T) {
	p, d := newTestPort(time.Second)
	defer p.Close()

	if _, err := p.Write([]byte("MEAS1?\r\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := p.Drain(); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if string(d.written) != "MEAS1?\r\n" {
		t.Errorf("Expected the command to be written, got %q", d.written)
	}
}
