package fluke45

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbePromptFirst(t *testing.T) {
	f := newFakeTransport()
	f.onFlush = []string{"=>"}

	assert.True(t, Probe("/dev/ttyUSB0", testOptions(f)...))
	assert.Equal(t, 0, f.breakCount(), "no interrupt when the prompt is already there")
	assert.Equal(t, 1, f.closeCount(), "Probe closes the transport it checked")
}

func TestProbeSilentDevice(t *testing.T) {
	f := newFakeTransport()

	start := time.Now()
	assert.False(t, Probe("/dev/ttyS0", testOptions(f)...))
	elapsed := time.Since(start)

	assert.Equal(t, 1, f.breakCount(), "ETX is sent once, after the first timeout")
	assert.Equal(t, 1, f.closeCount())
	assert.GreaterOrEqual(t, elapsed, 2*testTimeout)
	assert.Less(t, elapsed, time.Second)
}

func TestProbePromptAfterInterrupt(t *testing.T) {
	f := newFakeTransport()
	f.onBreak = []string{"=>"}

	assert.True(t, Probe("/dev/ttyUSB0", testOptions(f)...))
	assert.Equal(t, 1, f.breakCount())
}

func TestProbeDiscardsPartialReply(t *testing.T) {
	f := newFakeTransport()
	f.onFlush = []string{"1.2345E+00", "", "=>"}

	assert.True(t, Probe("/dev/ttyUSB0", testOptions(f)...))
	assert.Equal(t, 0, f.breakCount())
}

func TestProbeChattyPort(t *testing.T) {
	f := newFakeTransport()
	f.onFlush = strings.Split(strings.Repeat("NMEA,", maxDiscardedLines+2), ",")

	_, err := ProbePort("/dev/ttyS1", testOptions(f)...)
	assert.ErrorIs(t, err, ErrNoPrompt)
	assert.Equal(t, 1, f.closeCount())
}

func TestProbePortLeavesTransportOpen(t *testing.T) {
	f := newFakeTransport()
	f.onFlush = []string{"=>"}

	tr, err := ProbePort("/dev/ttyUSB0", testOptions(f)...)
	require.NoError(t, err)
	assert.Same(t, f, tr)
	assert.Equal(t, 0, f.closeCount())
	assert.Equal(t, 1, f.flushes, "stale input is cleared before probing")
}

func TestProbePortOpenError(t *testing.T) {
	openErr := errors.New("permission denied")
	_, err := ProbePort("/dev/ttyS0",
		WithLogger(quietLogger()),
		WithOpener(func(string, int, time.Duration) (Transport, error) {
			return nil, openErr
		}),
	)
	assert.ErrorIs(t, err, openErr)
}

func TestProbePortReadError(t *testing.T) {
	f := newFakeTransport()
	f.onFlush = []string{"x"}
	f.readErr = errors.New("device unplugged")

	_, err := ProbePort("/dev/ttyUSB0", testOptions(f)...)
	assert.ErrorIs(t, err, f.readErr)
	assert.Equal(t, 1, f.closeCount(), "transport must be closed on the error path")
}

func TestProbePassesSettings(t *testing.T) {
	var gotBaud int
	var gotTimeout time.Duration
	f := newFakeTransport()
	f.onFlush = []string{"=>"}

	ok := Probe("/dev/ttyUSB0",
		WithBaudRate(4800),
		WithTimeout(testTimeout),
		WithLogger(quietLogger()),
		WithOpener(func(_ string, baud int, timeout time.Duration) (Transport, error) {
			gotBaud, gotTimeout = baud, timeout
			return f, nil
		}),
	)
	require.True(t, ok)
	assert.Equal(t, 4800, gotBaud)
	assert.Equal(t, testTimeout, gotTimeout)
}

// bench maps device names to scripted transports.
type bench map[string]*fakeTransport

func (b bench) options(ports ...string) []Option {
	return []Option{
		WithTimeout(testTimeout),
		WithPollInterval(time.Millisecond),
		WithLogger(quietLogger()),
		WithLister(func() ([]string, error) { return ports, nil }),
		WithOpener(func(device string, _ int, _ time.Duration) (Transport, error) {
			f, ok := b[device]
			if !ok {
				return nil, errors.New("no such device")
			}
			return f, nil
		}),
	}
}

func newBench() bench {
	meter := newFakeMeter()
	meter.onFlush = []string{"=>"}
	return bench{
		"/dev/ttyS0":   newFakeTransport(),
		"/dev/ttyUSB0": meter,
	}
}

func TestFindPorts(t *testing.T) {
	b := newBench()

	ports, err := FindPorts(b.options("/dev/ttyS0", "/dev/ttyS1", "/dev/ttyUSB0")...)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dev/ttyUSB0"}, ports)

	for name, f := range b {
		assert.Equal(t, 1, f.closeCount(), "every probed transport is closed: %s", name)
	}
}

func TestFindPortsNone(t *testing.T) {
	ports, err := FindPorts(newBench().options("/dev/ttyS0")...)
	require.NoError(t, err)
	assert.Empty(t, ports)
}

func TestFindPortsListError(t *testing.T) {
	listErr := errors.New("no /dev")
	_, err := FindPorts(
		WithLogger(quietLogger()),
		WithLister(func() ([]string, error) { return nil, listErr }),
	)
	assert.ErrorIs(t, err, listErr)
}

func TestConnectScans(t *testing.T) {
	b := newBench()

	s, err := Connect("", b.options("/dev/ttyS0", "/dev/ttyUSB0")...)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "/dev/ttyUSB0", s.Device())
	assert.Equal(t, 0, b["/dev/ttyUSB0"].closeCount(), "the probed transport is adopted, not reopened")
	assert.Equal(t, 1, b["/dev/ttyS0"].closeCount())

	display, err := s.GetReading()
	require.NoError(t, err)
	assert.Equal(t, "1.2346 V [auto, dc]", display)
}

func TestConnectNoMeter(t *testing.T) {
	_, err := Connect("", newBench().options("/dev/ttyS0")...)
	assert.ErrorIs(t, err, ErrNoMeterFound)
}

func TestConnectDevice(t *testing.T) {
	b := newBench()
	s, err := Connect("/dev/ttyUSB0", b.options()...)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "/dev/ttyUSB0", s.Device())
}
