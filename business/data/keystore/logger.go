package keystore

import "go.uber.org/zap"

// badgerLogger adapts the application logger to the badger.Logger
// interface so store internals log through the same pipeline.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	if l.log != nil {
		l.log.Errorf(format, args...)
	}
}

func (l badgerLogger) Warningf(format string, args ...any) {
	if l.log != nil {
		l.log.Warnf(format, args...)
	}
}

func (l badgerLogger) Infof(format string, args ...any) {
	if l.log != nil {
		l.log.Infof(format, args...)
	}
}

func (l badgerLogger) Debugf(format string, args ...any) {
	if l.log != nil {
		l.log.Debugf(format, args...)
	}
}
