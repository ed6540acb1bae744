package log

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

// NewMockEntry returns an entry of a null logger at trace level and the hook recording its output
func NewMockEntry() (*logrus.Entry, *MockLoggerHook) {
	logger, _ := test.NewNullLogger()
	logger.Level = logrus.TraceLevel

	entry := logrus.Entry{Logger: logger}
	hook := MockLoggerHook{}

	entry.Logger.AddHook(&hook)

	hook.On("Fire", mock.Anything).Return(nil)

	return &entry, &hook
}

// MockLoggerHook records the message and level of every fired entry
type MockLoggerHook struct {
	mock.Mock

	Messages []string
	levels   []logrus.Level
	mu       sync.Mutex
}

// Levels implements `logrus.Hook`.
func (h *MockLoggerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements `logrus.Hook`.
func (h *MockLoggerHook) Fire(entry *logrus.Entry) error {
	_ = h.Called()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.Messages = append(h.Messages, entry.Message)
	h.levels = append(h.levels, entry.Level)

	return nil
}

// MessagesAt returns the messages logged at level
func (h *MockLoggerHook) MessagesAt(level logrus.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var res []string

	for i, l := range h.levels {
		if l == level {
			res = append(res, h.Messages[i])
		}
	}

	return res
}

// Reset clears the recorded messages
func (h *MockLoggerHook) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Messages = nil
	h.levels = nil
}
