// Package logadapter adapts github.com/joeycumines/go-desim's [desim.Logger]
// interface onto github.com/joeycumines/logiface, backed by
// github.com/rs/zerolog — the structured-logging stack cmd/* example
// programs use.
package logadapter

import (
	desim "github.com/joeycumines/go-desim"
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger adapts a [logiface.Logger] built with the zerolog backend onto
// [desim.Logger].
type Logger struct {
	l *logiface.Logger[*izerolog.Event]
}

// New constructs a [Logger] writing structured zerolog output to w, through
// logiface's level/field abstraction.
func New(w zerolog.Logger, opts ...logiface.Option[*izerolog.Event]) *Logger {
	return &Logger{
		l: izerolog.L.New(append([]logiface.Option[*izerolog.Event]{izerolog.L.WithZerolog(w)}, opts...)...),
	}
}

func (l *Logger) Debug(msg string, fields ...desim.Field) { l.log(l.l.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...desim.Field)  { l.log(l.l.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...desim.Field)  { l.log(l.l.Warning(), msg, fields) }
func (l *Logger) Error(msg string, fields ...desim.Field) { l.log(l.l.Err(), msg, fields) }

func (l *Logger) log(b *logiface.Builder[*izerolog.Event], msg string, fields []desim.Field) {
	for _, f := range fields {
		b = b.Field(f.Key, f.Value)
	}
	b.Log(msg)
}

var _ desim.Logger = (*Logger)(nil)
