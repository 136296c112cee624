package fluke45

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/allbin/go-fluke45/logger"
)

// Session owns the transport to a meter. All methods are safe for concurrent
// use; exchanges are serialized on the wire.
type Session struct {
	mu     sync.Mutex
	device string
	t      Transport
	cfg    Config
	log    logger.Logger

	inSync bool
	state  *Snapshot // nil until refreshed, reset by any non-reading query
	closed bool
}

// Open opens device and initializes the meter.
func Open(device string, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	t, err := cfg.Opener(device, cfg.BaudRate, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}
	return newSession(device, t, cfg)
}

// NewSession takes ownership of an already open transport, typically one
// returned by ProbePort, and initializes the meter.
func NewSession(device string, t Transport, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return newSession(device, t, cfg)
}

// Connect opens a session on device, or on the first port with a meter when
// device is empty.
func Connect(device string, opts ...Option) (*Session, error) {
	if device != "" {
		return Open(device, opts...)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	device, t, err := findFirst(cfg)
	if err != nil {
		return nil, err
	}
	return newSession(device, t, cfg)
}

func newSession(device string, t Transport, cfg Config) (*Session, error) {
	s := &Session{
		device: device,
		t:      t,
		cfg:    cfg,
		log:    cfg.Logger.With("port", device),
	}

	if err := t.ResetInputBuffer(); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", device, err)
	}

	if _, err := s.query(preambleCommand); err != nil {
		if !isProtocolError(err) {
			_ = t.Close()
			return nil, fmt.Errorf("failed to initialize %s: %w", device, err)
		}
		s.log.Warn("meter did not accept preamble", "error", err)
	}

	s.log.Info("session opened")
	return s, nil
}

func isProtocolError(err error) bool {
	return errors.Is(err, ErrNoReply) ||
		errors.Is(err, ErrCommandError) ||
		errors.Is(err, ErrExecutionError)
}

// Device returns the identifier the session was opened with.
func (s *Session) Device() string {
	return s.device
}

// InSync reports whether the last exchange ended with the ready prompt.
func (s *Session) InSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inSync
}

// Query sends a command and returns its reply line. Any command other than
// the reading query drops the cached state.
func (s *Session) Query(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSessionClosed
	}
	return s.query(command)
}

func (s *Session) query(command string) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(command), readingCommand) {
		s.state = nil
	}

	s.log.Debug("command", "cmd", command)
	if _, err := s.t.Write([]byte(command + "\r\n")); err != nil {
		s.inSync = false
		return "", fmt.Errorf("failed to send %q: %w", command, err)
	}
	// The reply timeout starts once the command is on the wire.
	if err := s.t.Drain(); err != nil {
		s.inSync = false
		return "", fmt.Errorf("failed to send %q: %w", command, err)
	}

	reply, ok, err := s.readLine()
	if err != nil {
		s.inSync = false
		return "", fmt.Errorf("failed to read reply to %q: %w", command, err)
	}
	if !ok {
		s.inSync = false
		return "", fmt.Errorf("%w to %q", ErrNoReply, command)
	}
	s.log.Debug("reply", "line", reply)

	// A command without output is answered by the prompt alone.
	switch reply {
	case promptReady:
		s.inSync = true
		return "", nil
	case promptCmdError:
		s.inSync = true
		return "", fmt.Errorf("%w: %q", ErrCommandError, command)
	case promptExecError:
		s.inSync = true
		return "", fmt.Errorf("%w: %q", ErrExecutionError, command)
	}

	prompt, ok, err := s.readLine()
	if err != nil {
		s.inSync = false
		return "", fmt.Errorf("failed to read prompt after %q: %w", command, err)
	}
	if ok && prompt != "" {
		s.inSync = prompt == promptReady
		if !s.inSync {
			s.log.Debug("unexpected prompt", "line", prompt)
		}
	}

	return reply, nil
}

func (s *Session) readLine() (string, bool, error) {
	return readLine(s.t, s.cfg.Timeout, s.cfg.PollInterval)
}

// RefreshState queries the full meter state and replaces the cached snapshot.
func (s *Session) RefreshState() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if err := s.refresh(); err != nil {
		return Snapshot{}, err
	}
	return s.state.clone(), nil
}

func (s *Session) refresh() error {
	reply, err := s.query(stateCommand)
	if err != nil {
		return err
	}

	st, err := parseState(s.device, reply)
	if err != nil {
		if errors.Is(err, ErrUnknownFunction) {
			s.log.Error("unknown function", "reply", reply)
		}
		return err
	}

	s.state = &st
	return nil
}

// GetState returns the cached snapshot, refreshing it first if it is empty.
// The result is a copy.
func (s *Session) GetState() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if s.state == nil {
		if err := s.refresh(); err != nil {
			return Snapshot{}, err
		}
	}
	return s.state.clone(), nil
}

// Cached returns the cached snapshot without talking to the meter.
func (s *Session) Cached() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return Snapshot{}, false
	}
	return s.state.clone(), true
}

// GetReading takes one reading and returns its display string. Only the
// value fields of the cached snapshot are updated.
func (s *Session) GetReading() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSessionClosed
	}
	if s.state == nil {
		if err := s.refresh(); err != nil {
			return "", err
		}
	}

	reply, err := s.query(readingCommand)
	if err != nil {
		return "", err
	}
	r, err := parseValue(reply)
	if err != nil {
		return "", err
	}

	st := s.state.clone()
	st.Value = r.value
	st.Mantissa = r.mantissa
	st.Multiplier = r.multiplier
	st.Display = formatDisplay(r.mantissa, r.multiplier, st.Units, st.Modes)
	s.state = &st

	return st.Display, nil
}

// IsSet reports whether the meter is on the named function (case-insensitive)
// with exactly the given modes. Errors count as not set.
func (s *Session) IsSet(function string, modes []string) bool {
	st, err := s.GetState()
	if err != nil {
		s.log.Debug("state unavailable", "error", err)
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(function), st.Function) {
		return false
	}
	return st.HasModes(modes)
}

// Invalidate drops the cached snapshot so the next read refreshes it.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
}

// Resync waits for the ready prompt, interrupting the meter if it stays
// silent. It returns immediately if the last exchange ended in sync.
func (s *Session) Resync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if s.inSync {
		return true
	}

	ok, err := syncPrompt(s.t, s.cfg, s.log)
	if err != nil {
		s.log.Warn("resync failed", "error", err)
		return false
	}
	if !ok {
		s.log.Warn("meter did not return to prompt")
	}
	s.inSync = ok
	return ok
}

// Close releases the transport. Later calls return ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.state = nil
	s.log.Info("session closed")
	return s.t.Close()
}
