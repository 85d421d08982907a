package rlog

// Default is the package-level Manager used by the Debug/Info/Warn/Error/With
// functions below, for callers that don't need a dedicated logger instance.
var Default = New(nil)

func Debug(msg string, keysAndValues ...interface{}) { Default.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...interface{})  { Default.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...interface{})  { Default.Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...interface{}) { Default.Error(msg, keysAndValues...) }

// With adds a variadic number of fields to the logging context.
// The keysAndValues must be pairs of string keys and arbitrary data.
func With(keysAndValues ...interface{}) Ctx { return Default.With(keysAndValues...) }
