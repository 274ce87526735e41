package log

import (
	"io"
	"sync"
)

var (
	providerMu    sync.RWMutex
	defaultLogger Logger = NewZerologLogger(io.Discard, LevelInfo, FormatJSON)
	minLevel             = LevelInfo
)

// GetLogger returns the package-wide logger. Until SetLogger or SetupLogger is
// called it discards everything.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the package-wide logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLogger replaces the package-wide logger.
func SetLogger(l Logger) {
	if l == nil {
		return
	}
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultLogger = l
}

// defaultProvider exposes the package-wide logger as a LoggerProvider.
type defaultProvider struct{}

// DefaultProvider returns a LoggerProvider backed by the package-wide logger.
func DefaultProvider() LoggerProvider { return defaultProvider{} }

func (defaultProvider) GetLogger() Logger                    { return GetLogger() }
func (defaultProvider) GetLoggerWithName(name string) Logger { return GetLoggerWithName(name) }

// SetLevel records the level used by loggers created through CLI setup.
// Loggers that already exist keep their own level.
func (defaultProvider) SetLevel(level Level) {
	providerMu.Lock()
	defer providerMu.Unlock()
	minLevel = level
}

// CurrentLevel returns the level last set through DefaultProvider().SetLevel.
func CurrentLevel() Level {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return minLevel
}
