package format

import (
	"bytes"
	"io"
	"time"

	"github.com/marschall/jboss-logmanager-ext/base"
)

// StructuredFormatter renders log records through format-specific generators,
// one fresh generator per Format call
//
// The top-level fields are written in a fixed order and absent optional fields
// are written as empty elements rather than omitted, keeping the output schema
// stable across records.
type StructuredFormatter struct {
	keys         *KeyTable
	newGenerator func(writer io.Writer) base.Generator
	head         string
	tail         string
}

// Format renders one record; a generator failure aborts this record only and
// leaves the formatter usable for subsequent calls
func (f *StructuredFormatter) Format(record *base.LogRecord) (string, error) {
	buffer := &bytes.Buffer{}
	gen := f.newGenerator(buffer)
	if err := gen.Begin(); err != nil {
		return "", err
	}
	if err := f.writeTopFields(gen, record); err != nil {
		return "", err
	}
	if err := gen.AddNestedMap(f.keys.Resolve(KeyFields), record.Fields); err != nil {
		return "", err
	}
	if err := gen.AddException(record.Exception); err != nil {
		return "", err
	}
	if err := gen.End(); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

// Head returns the framing prologue, a pure function of configuration
func (f *StructuredFormatter) Head() string {
	return f.head
}

// Tail returns the framing epilogue, a pure function of configuration
func (f *StructuredFormatter) Tail() string {
	return f.tail
}

func (f *StructuredFormatter) writeTopFields(gen base.Generator, record *base.LogRecord) error {
	keys := f.keys
	if err := gen.AddField(keys.Resolve(KeyTimestamp), timestampValue(record.Timestamp)); err != nil {
		return err
	}
	sequence := base.Absent
	if record.SequenceNumber >= 0 {
		sequence = base.Int64(record.SequenceNumber)
	}
	if err := gen.AddField(keys.Resolve(KeySequence), sequence); err != nil {
		return err
	}
	if err := gen.AddField(keys.Resolve(KeyLoggerName), base.OptString(record.LoggerName)); err != nil {
		return err
	}
	if err := gen.AddField(keys.Resolve(KeyLevel), base.OptString(string(record.Level))); err != nil {
		return err
	}
	if err := gen.AddField(keys.Resolve(KeyMessage), base.OptString(record.Message)); err != nil {
		return err
	}
	if err := gen.AddField(keys.Resolve(KeySourceClassName), base.OptString(record.SourceClassName)); err != nil {
		return err
	}
	if err := gen.AddField(keys.Resolve(KeySourceFileName), base.OptString(record.SourceFileName)); err != nil {
		return err
	}
	if err := gen.AddField(keys.Resolve(KeySourceMethodName), base.OptString(record.SourceMethodName)); err != nil {
		return err
	}
	sourceLine := base.Absent
	if record.SourceLineNumber >= 0 {
		sourceLine = base.Int(record.SourceLineNumber)
	}
	return gen.AddField(keys.Resolve(KeySourceLineNumber), sourceLine)
}

func timestampValue(timestamp time.Time) base.Value {
	if timestamp.IsZero() {
		return base.Absent
	}
	return base.String(timestamp.Format(time.RFC3339Nano))
}
