package base

import (
	"fmt"
	"time"
)

// Level is the severity of a log record, named after the levels of common logging frameworks
type Level string

// Predefined severity levels
const (
	LevelTrace Level = "TRACE"
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelFatal Level = "FATAL"
)

// LogRecord is an immutable snapshot of one log event, produced by the surrounding
// logging framework and never mutated here
//
// Optional numeric fields use negative values for "absent"; optional string fields
// use the empty string; Fields and Exception may be nil
type LogRecord struct {
	Timestamp        time.Time
	SequenceNumber   int64 // <0 = absent
	LoggerName       string
	Level            Level
	Message          string
	SourceClassName  string
	SourceFileName   string
	SourceMethodName string
	SourceLineNumber int // <0 = absent
	Fields           *FieldMap
	Exception        *ExceptionInfo
}

// ExceptionInfo carries the message and stack frames of a captured error
//
// Only the outermost exception is represented; nested causes are not unwrapped
// to keep the wire output compatible with existing consumers
type ExceptionInfo struct {
	Message string
	Frames  []StackFrame
}

// StackFrame is one frame of an exception stack trace
type StackFrame struct {
	ClassName  string
	MethodName string
	LineNumber int // <0 = unknown, to be omitted from output
}

// Value is an optional scalar to be rendered into a structured document
//
// The zero value is absent; absent values render as empty elements rather than
// empty text so that consumers can tell "no value" from "empty value"
type Value struct {
	text    string
	present bool
}

// Absent is the missing Value
var Absent = Value{}

// String makes a present Value from a string
func String(text string) Value {
	return Value{text: text, present: true}
}

// OptString makes a Value from a string, treating the empty string as absent
func OptString(text string) Value {
	if len(text) == 0 {
		return Absent
	}
	return Value{text: text, present: true}
}

// Int makes a present Value from an int
func Int(number int) Value {
	return Value{text: fmt.Sprint(number), present: true}
}

// Int64 makes a present Value from an int64
func Int64(number int64) Value {
	return Value{text: fmt.Sprint(number), present: true}
}

// Any makes a Value from an arbitrary scalar rendered with fmt.Sprint, or absent for nil
func Any(value any) Value {
	if value == nil {
		return Absent
	}
	return Value{text: fmt.Sprint(value), present: true}
}

// Present tells whether the value carries text
func (v Value) Present() bool {
	return v.present
}

// Text returns the rendered text, empty if absent
func (v Value) Text() string {
	return v.text
}
