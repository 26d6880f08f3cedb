package util

import (
	"net"
	"time"
)

// WriteDeadlineWriter wraps a connection with write timeouts updated infrequently
// in trade of accuracy; the real timeout could be anything from the specified
// value to double of it
//
// A zero timeout disables deadlines and passes writes through untouched.
type WriteDeadlineWriter struct {
	conn            net.Conn
	writeTimeoutMin time.Duration
	writeTimeoutMax time.Duration
	writeDeadline   time.Time
}

// WrapWriteDeadline creates a WriteDeadlineWriter for the given network connection
func WrapWriteDeadline(conn net.Conn, writeTimeout time.Duration) *WriteDeadlineWriter {
	return &WriteDeadlineWriter{
		conn:            conn,
		writeTimeoutMin: writeTimeout,
		writeTimeoutMax: writeTimeout * 2,
		writeDeadline:   time.Time{},
	}
}

// WriteDeadline returns the current write deadline
func (w *WriteDeadlineWriter) WriteDeadline() time.Time {
	return w.writeDeadline
}

func (w *WriteDeadlineWriter) Write(p []byte) (int, error) {
	if w.writeTimeoutMin > 0 {
		now := time.Now()
		if w.writeDeadline.Sub(now) < w.writeTimeoutMin {
			nextDeadline := now.Add(w.writeTimeoutMax)
			if err := w.conn.SetWriteDeadline(nextDeadline); err != nil {
				return 0, err
			}
			w.writeDeadline = nextDeadline
		}
	}
	return w.conn.Write(p)
}
