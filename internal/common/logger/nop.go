package logger

// NopLogger 丢弃所有日志，测试用。
type NopLogger struct{}

func Nop() Logger { return NopLogger{} }

func (NopLogger) Debug(args ...interface{})                        {}
func (NopLogger) Debugf(format string, args ...interface{})        {}
func (NopLogger) Info(args ...interface{})                         {}
func (NopLogger) Infof(format string, args ...interface{})         {}
func (NopLogger) Warn(args ...interface{})                         {}
func (NopLogger) Warnf(format string, args ...interface{})         {}
func (NopLogger) Error(args ...interface{})                        {}
func (NopLogger) Errorf(format string, args ...interface{})        {}
func (NopLogger) Fatal(args ...interface{})                        {}
func (NopLogger) Fatalf(format string, args ...interface{})        {}
func (NopLogger) WithFields(fields map[string]interface{}) Logger  { return NopLogger{} }
func (NopLogger) WithField(key string, value interface{}) Logger   { return NopLogger{} }
