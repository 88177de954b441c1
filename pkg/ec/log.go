package ec

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logMu sync.RWMutex
	log   logrus.FieldLogger = discardLogger()
)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogger installs the logger used by the signing engines. Passing nil
// restores the default, which discards everything.
func SetLogger(l logrus.FieldLogger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = discardLogger()
	}
	log = l
}

// Logger returns the logger used by the signing engines.
func Logger() logrus.FieldLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}
