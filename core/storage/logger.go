package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dvla-io/dvla/util"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQuery is the duration above which history queries are logged as warning
const slowQuery = 200 * time.Millisecond

// gormLogger routes gorm messages to the history logger
type gormLogger struct {
	log   *util.Logger
	level logger.LogLevel
}

func newGormLogger(log *util.Logger) *gormLogger {
	return &gormLogger{log: log, level: logger.Warn}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{log: l.log, level: level}
}

func (l *gormLogger) Info(_ context.Context, format string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.DEBUG.Printf(format, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, format string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.WARN.Printf(format, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, format string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.ERROR.Printf(format, args...)
	}
}

// Trace logs failed and slow statements, all others at trace level
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.ERROR.Printf("%v: %s", err, sql)
	case elapsed > slowQuery:
		l.log.WARN.Printf("slow query [%v]: %s", elapsed.Round(time.Millisecond), sql)
	default:
		l.log.TRACE.Printf("[%v] %s (%d rows)", elapsed.Round(time.Microsecond), sql, rows)
	}
}
