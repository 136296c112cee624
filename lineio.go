package fluke45

import (
	"errors"
	"strings"
	"time"

	"github.com/allbin/go-fluke45/logger"
	"github.com/allbin/go-fluke45/serialport"
)

// maxDiscardedLines bounds how many non-prompt lines resynchronization reads
// before deciding the port is not a meter.
const maxDiscardedLines = 8

// readLine waits up to timeout for input to become available, then reads one
// line and strips its two-byte terminator. The bool is false if nothing arrived.
func readLine(t Transport, timeout, poll time.Duration) (string, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		n, err := t.InWaiting()
		if err != nil {
			return "", false, err
		}
		if n > 0 {
			raw, err := t.ReadLine()
			if errors.Is(err, serialport.ErrReadTimeout) {
				return "", false, nil
			}
			if err != nil {
				return "", false, err
			}
			return stripTerminator(raw), true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", false, nil
		}
		time.Sleep(min(poll, remaining))
	}
}

func stripTerminator(raw []byte) string {
	if len(raw) < 2 {
		return ""
	}
	return string(raw[:len(raw)-2])
}

func isPrompt(line string) bool {
	return line == promptReady || line == promptCmdError || line == promptExecError
}

// syncPrompt reads lines until the ready prompt shows up. Every attempt that
// times out with nothing buffered, except the last, sends ETX so the meter
// emits a fresh prompt.
func syncPrompt(t Transport, cfg Config, log logger.Logger) (bool, error) {
	attempts := cfg.SyncAttempts
	discarded := 0

	for attempts > 0 {
		line, ok, err := readLine(t, cfg.Timeout, cfg.PollInterval)
		if err != nil {
			return false, err
		}

		if ok {
			if strings.HasPrefix(line, promptReady) {
				return true, nil
			}
			discarded++
			log.Debug("discarding line while waiting for prompt", "line", line)
			if discarded >= maxDiscardedLines {
				return false, nil
			}
			continue
		}

		attempts--
		if attempts == 0 {
			break
		}

		n, err := t.InWaiting()
		if err != nil {
			return false, err
		}
		if n == 0 {
			log.Debug("no prompt, sending ETX")
			if _, err := t.Write([]byte{etx}); err != nil {
				return false, err
			}
		}
	}

	return false, nil
}
