package defs

import (
	"time"
)

var (
	// DefaultPort is the port used by socket handlers when none is configured
	DefaultPort = 4560

	// ConnectionTimeout is for establishing a connection to the remote collector
	ConnectionTimeout = 60 * time.Second

	// WriteTimeout bounds individual socket writes; zero disables write deadlines
	//
	// Disabled by default because publishing is synchronous on the caller and
	// timeout or backpressure handling belongs to the surrounding framework
	WriteTimeout = time.Duration(0)

	// WriterBufferSize is the buffer size in bytes of the text writer wrapping a connection
	WriterBufferSize = 4096
)
