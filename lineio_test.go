package fluke45

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	f := newFakeTransport()
	f.pending = []string{"FLUKE 45;VDC", "=>"}

	line, ok, err := readLine(f, testTimeout, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "FLUKE 45;VDC", line)

	line, ok, err = readLine(f, testTimeout, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "=>", line)
}

func TestReadLineTimeout(t *testing.T) {
	f := newFakeTransport()

	start := time.Now()
	line, ok, err := readLine(f, testTimeout, 5*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", line)
	assert.GreaterOrEqual(t, elapsed, testTimeout)
	assert.Less(t, elapsed, time.Second, "must not block past the deadline")
}

func TestReadLineLateInput(t *testing.T) {
	f := newFakeTransport()
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.mu.Lock()
		f.pending = append(f.pending, "=>")
		f.mu.Unlock()
	}()

	line, ok, err := readLine(f, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "=>", line)
}

type failingTransport struct {
	fakeTransport
}

func (*failingTransport) InWaiting() (int, error) {
	return 0, errors.New("ioctl failed")
}

func TestReadLineTransportError(t *testing.T) {
	_, _, err := readLine(&failingTransport{}, testTimeout, time.Millisecond)
	assert.EqualError(t, err, "ioctl failed")
}

func TestStripTerminator(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"=>\r\n", "=>"},
		{"1.2345E+00\r\n", "1.2345E+00"},
		{"\r\n", ""},
		{"\n", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripTerminator([]byte(tt.raw)); got != tt.want {
			t.Errorf("stripTerminator(%q) = %q, expected %q", tt.raw, got, tt.want)
		}
	}
}

func TestSyncPromptAttempts(t *testing.T) {
	f := newFakeTransport()
	cfg := DefaultConfig()
	cfg.Timeout = testTimeout
	cfg.PollInterval = time.Millisecond
	cfg.SyncAttempts = 3

	ok, err := syncPrompt(f, cfg, quietLogger())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, f.breakCount(), "ETX after every timed out attempt but the last")
}
