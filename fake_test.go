package fluke45

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/allbin/go-fluke45/logger"
	"github.com/allbin/go-fluke45/serialport"
)

// fakeTransport is a scripted meter. Writing a command queues the lines
// registered for it; ETX queues onBreak; the first flush queues onFlush.
type fakeTransport struct {
	mu sync.Mutex

	pending []string
	replies map[string][]string
	onBreak []string
	onFlush []string

	writes  []string
	breaks  int
	flushes int
	drains  int
	closed  int

	readErr  error
	writeErr error
	drainErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: map[string][]string{}}
}

// newFakeMeter answers the preamble, the state query and the reading query
// like a meter measuring 1.2345 V DC with autorange on.
func newFakeMeter() *fakeTransport {
	f := newFakeTransport()
	f.reply(preambleCommand, "=>")
	f.reply(stateCommand, "FLUKE 45;VDC;1;0;1.2345E+00;0", "=>")
	f.reply(readingCommand, "+1.2346E+0", "=>")
	return f
}

func (f *fakeTransport) reply(command string, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[command] = lines
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if len(p) == 1 && p[0] == etx {
		f.breaks++
		f.pending = append(f.pending, f.onBreak...)
		return 1, nil
	}

	command := strings.TrimSuffix(string(p), "\r\n")
	f.writes = append(f.writes, command)
	f.pending = append(f.pending, f.replies[command]...)
	return len(p), nil
}

func (f *fakeTransport) Drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.drainErr != nil {
		return f.drainErr
	}
	f.drains++
	return nil
}

func (f *fakeTransport) ReadLine() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.pending) == 0 {
		return nil, serialport.ErrReadTimeout
	}
	line := f.pending[0]
	f.pending = f.pending[1:]
	return []byte(line + "\r\n"), nil
}

func (f *fakeTransport) InWaiting() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, line := range f.pending {
		n += len(line) + 2
	}
	return n, nil
}

func (f *fakeTransport) ResetInputBuffer() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.flushes++
	f.pending = f.onFlush
	f.onFlush = nil
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) count(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, w := range f.writes {
		if w == command {
			n++
		}
	}
	return n
}

func (f *fakeTransport) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) drainCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drains
}

func (f *fakeTransport) breakCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.breaks
}

const testTimeout = 30 * time.Millisecond

func quietLogger() logger.Logger {
	return logger.NewSlog(io.Discard, logger.DebugLevel, logger.FormatJSON)
}

// testOptions wires every open to f and shortens the timeouts.
func testOptions(f *fakeTransport, extra ...Option) []Option {
	opts := []Option{
		WithTimeout(testTimeout),
		WithPollInterval(time.Millisecond),
		WithLogger(quietLogger()),
		WithOpener(func(string, int, time.Duration) (Transport, error) {
			return f, nil
		}),
	}
	return append(opts, extra...)
}

func openTestSession(t *testing.T, f *fakeTransport, extra ...Option) *Session {
	t.Helper()
	s, err := Open("/dev/ttyUSB0", testOptions(f, extra...)...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}
