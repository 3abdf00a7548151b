package log

import "context"

// Kv is a set of structured logging key-value pairs.
type Kv = map[string]any

// Logger is the logging interface used across the application.
type Logger interface {
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	WithValues(values Kv) Logger
	WithCtxValues(ctx context.Context) Logger
	SetValuesOnCtx(parent context.Context, values Kv) context.Context
}

type contextKey int

const contextLogValuesKey contextKey = iota

// CtxValues returns the log values stored on ctx, if any.
func CtxValues(ctx context.Context) Kv {
	v, _ := ctx.Value(contextLogValuesKey).(Kv)
	return v
}

// CtxWithValues returns a copy of parent carrying values merged over the ones
// already stored on it.
func CtxWithValues(parent context.Context, values Kv) context.Context {
	merged := Kv{}
	for k, v := range CtxValues(parent) {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return context.WithValue(parent, contextLogValuesKey, merged)
}

// Noop discards everything.
var Noop Logger = noop(0)

type noop int

func (noop) Infof(string, ...any) {}
func (noop) Warningf(string, ...any) {}
func (noop) Errorf(string, ...any) {}
func (noop) Debugf(string, ...any) {}
func (n noop) WithValues(Kv) Logger { return n }
func (n noop) WithCtxValues(context.Context) Logger { return n }
func (noop) SetValuesOnCtx(parent context.Context, _ Kv) context.Context { return parent }
