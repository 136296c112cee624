package models

import (
	"context"
	"sync"

	fluke45 "github.com/allbin/go-fluke45"
)

// ConnectionStatusMsg reports the outcome of connecting to the meter.
type ConnectionStatusMsg struct {
	Session *fluke45.Session
	Error   error
}

// MeterModel holds the connection state shared by the monitor's components.
type MeterModel struct {
	// Meter connection
	session  *fluke45.Session
	portPath string

	// State
	paused bool
	err    error

	// Cancellation and synchronization
	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewMeterModel(portPath string) *MeterModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &MeterModel{
		portPath: portPath,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *MeterModel) GetSession() *fluke45.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *MeterModel) SetSession(s *fluke45.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	if s != nil {
		m.portPath = s.Device()
	}
}

func (m *MeterModel) GetPortPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.portPath
}

func (m *MeterModel) IsConnected() bool {
	return m.GetSession() != nil
}

func (m *MeterModel) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// TogglePause flips the paused flag and returns the new value.
func (m *MeterModel) TogglePause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = !m.paused
	return m.paused
}

func (m *MeterModel) GetError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *MeterModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetContext is cancelled by Cleanup; readings taken after that are dropped.
func (m *MeterModel) GetContext() context.Context {
	return m.ctx
}

func (m *MeterModel) Cleanup() {
	// Cancel context to stop pending reads
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.session != nil {
		_ = m.session.Close()
		m.session = nil
	}
	m.mu.Unlock()
}
