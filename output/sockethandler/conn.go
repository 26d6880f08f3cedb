package sockethandler

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/marschall/jboss-logmanager-ext/defs"
	"github.com/marschall/jboss-logmanager-ext/util"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// dialCollector opens a connection to the collector per the selected protocol
func dialCollector(protocol Protocol, address string, port int) (net.Conn, error) {
	hostPort := net.JoinHostPort(address, strconv.Itoa(port))
	switch protocol {
	case ProtocolTLS:
		dialer := &net.Dialer{Timeout: defs.ConnectionTimeout}
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = true
		return tls.DialWithDialer(dialer, "tcp", hostPort, tlsConfig)
	case ProtocolUDP:
		return net.DialTimeout("udp", hostPort, defs.ConnectionTimeout)
	case ProtocolTCP:
		return net.DialTimeout("tcp", hostPort, defs.ConnectionTimeout)
	default:
		return nil, fmt.Errorf("unsupported protocol '%s'", protocol)
	}
}

// connWriter is the buffered text writer over a live connection, optionally
// converting text to the configured charset on the way out
type connWriter struct {
	conn    net.Conn
	encoder io.WriteCloser // charset conversion stage, nil when writing raw UTF-8
	buffer  *bufio.Writer
}

func newConnWriter(conn net.Conn, encodingName string) (*connWriter, error) {
	var sink io.Writer = util.WrapWriteDeadline(conn, defs.WriteTimeout)
	var encoder io.WriteCloser
	if len(encodingName) > 0 {
		enc, err := ianaindex.IANA.Encoding(encodingName)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding '%s': %w", encodingName, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("unsupported encoding '%s'", encodingName)
		}
		encoder = transform.NewWriter(sink, enc.NewEncoder())
		sink = encoder
	}
	return &connWriter{
		conn:    conn,
		encoder: encoder,
		buffer:  bufio.NewWriterSize(sink, defs.WriterBufferSize),
	}, nil
}

func (w *connWriter) WriteString(text string) error {
	_, err := w.buffer.WriteString(text)
	return err
}

func (w *connWriter) Flush() error {
	return w.buffer.Flush()
}

// Close releases the connection; flushing beforehand is the caller's decision
func (w *connWriter) Close() error {
	var firstErr error
	if w.encoder != nil {
		if err := w.encoder.Close(); err != nil {
			firstErr = err
		}
	}
	if err := w.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// RemoteAddr returns the collector's address for logging
func (w *connWriter) RemoteAddr() net.Addr {
	return w.conn.RemoteAddr()
}
