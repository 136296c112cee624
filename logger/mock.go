package logger

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger records logging calls as testify expectations. Debug, Info,
// Warn, Error and Fatal are matched on (msg, keysAndValues); With on its
// key/value arguments. The level is plain state and never mocked.
type MockLogger struct {
	mock.Mock
	level Level
}

var _ Logger = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{level: DebugLevel}
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) { m.Called(msg, keysAndValues) }
func (m *MockLogger) Info(msg string, keysAndValues ...any)  { m.Called(msg, keysAndValues) }
func (m *MockLogger) Warn(msg string, keysAndValues ...any)  { m.Called(msg, keysAndValues) }
func (m *MockLogger) Error(msg string, keysAndValues ...any) { m.Called(msg, keysAndValues) }

// Fatal is recorded like Error; it does not exit.
func (m *MockLogger) Fatal(msg string, keysAndValues ...any) { m.Called(msg, keysAndValues) }

func (m *MockLogger) With(keyValues ...any) Logger {
	return m.Called(keyValues...).Get(0).(Logger)
}

func (m *MockLogger) Level() Level         { return m.level }
func (m *MockLogger) SetLevel(level Level) { m.level = level }
