package expr

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logMu  sync.RWMutex
	logger logrus.FieldLogger = logrus.StandardLogger()
)

// SetLogger replaces the logger receiving expression warnings.
func SetLogger(l logrus.FieldLogger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger = l
}

// Logger returns the logger receiving expression warnings.
func Logger() logrus.FieldLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}
