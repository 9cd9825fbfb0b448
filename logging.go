package slab

import "go.uber.org/zap"

// defaultLogger is a disabled logger: the teacher gates its own
// fmt.Fprintf diagnostics behind a trace const that defaults to off, and
// we mirror that default here with a no-op zap core rather than printing
// by default.
var defaultLogger = zap.NewNop()

// fatal logs a structured diagnostic for an invariant violation and then
// panics with err, so the caller's goroutine aborts the way §7 requires
// ("terminate... with a diagnostic identifying the cache, object
// address, and invariant violated") without tearing down the whole
// process the way a real kernel panic or zap's own Fatal level would.
func fatal(log *zap.Logger, err error, fields ...zap.Field) {
	log.Error(err.Error(), fields...)
	panic(err)
}
