package base

// LogFormatter renders log records into a wire format, one document per record
//
// Implementations must be safe for concurrent Format calls: every call drives
// its own Generator instance and shares no mutable state
type LogFormatter interface {
	// Format renders a record to text; a failure aborts this record only
	Format(record *LogRecord) (string, error)

	// Head returns the framing prologue written once after a connection opens;
	// a pure function of configuration, identical across calls
	Head() string

	// Tail returns the framing epilogue written once before a connection closes;
	// a pure function of configuration, identical across calls
	Tail() string
}
