package sockethandler

import (
	"sync"

	"github.com/marschall/jboss-logmanager-ext/base"
	"github.com/marschall/jboss-logmanager-ext/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// Handler owns one connection to the collector and publishes formatted log
// records to it, synchronously on the caller's goroutine
//
// The connection is established lazily on the first publish and re-established
// on the first publish after any configuration change. A record that cannot be
// delivered is reported and dropped; there is no buffering and no retry beyond
// the next publish re-attempting initialization.
type Handler struct {
	logger    logger.Logger
	formatter base.LogFormatter
	reporter  base.ErrorReporter
	metrics   handlerMetrics
	autoFlush bool

	// every field below is guarded by mu; no goroutine may observe address,
	// port, protocol, writer or the pending flag without holding it
	mu       sync.Mutex
	address  string
	port     int
	protocol Protocol
	encoding string
	writer   *connWriter
	pending  bool // connection parameters changed, reinitialize on next publish
	closed   bool
}

// NewHandler creates a Handler; a nil reporter defaults to logging failures
// through parentLogger
//
// Connection parameters are taken from the config; formatter selection is the
// caller's (see Config.NewHandler for the configured default).
func NewHandler(parentLogger logger.Logger, config Config, formatter base.LogFormatter,
	reporter base.ErrorReporter, metricCreator promreg.MetricCreator) *Handler {

	handlerLogger := parentLogger.WithField(defs.LabelComponent, "SocketHandler")
	if reporter == nil {
		reporter = base.NewLoggingReporter(handlerLogger)
	}
	port := config.Port
	if port == 0 {
		port = defs.DefaultPort
	}
	protocol := config.Protocol
	if len(protocol) == 0 {
		protocol = ProtocolTCP
	}
	return &Handler{
		logger:    handlerLogger,
		formatter: formatter,
		reporter:  reporter,
		metrics:   newHandlerMetrics(metricCreator),
		autoFlush: config.AutoFlush,
		address:   config.Address,
		port:      port,
		protocol:  protocol,
		encoding:  config.Encoding,
		pending:   true,
	}
}

// Publish renders the record and writes it to the live connection, opening or
// reopening the connection first if configuration changed since the last write
//
// All failures are reported to the ErrorReporter and never returned: the
// record is dropped for this attempt and the pipeline keeps going.
func (h *Handler) Publish(record *base.LogRecord) {
	formatted, err := h.formatter.Format(record)
	if err != nil {
		h.reporter.Report("could not format record", err, base.FormatFailure)
		h.metrics.OnDropped(base.FormatFailure)
		return
	}
	if len(formatted) == 0 {
		// nothing to write; move along
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.metrics.OnDropped(base.OpenFailure)
		return
	}
	if h.pending {
		h.initialize()
	}
	if h.writer == nil {
		// initialization failed and was already reported; drop silently
		h.metrics.OnDropped(base.OpenFailure)
		return
	}
	if werr := h.writer.WriteString(formatted); werr != nil {
		h.reporter.Report("error writing log record", werr, base.WriteFailure)
		h.metrics.OnError(werr)
		h.metrics.OnDropped(base.WriteFailure)
		return
	}
	if h.autoFlush {
		h.safeFlush(h.writer)
	}
	h.metrics.OnPublished(len(formatted))
}

// Flush flushes the live connection, best-effort
func (h *Handler) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.safeFlush(h.writer)
}

// Close tears down the live connection (tail written, flushed, closed,
// best-effort) and is terminal: the handler never reconnects afterwards.
// Rejecting publishes after close is the surrounding framework's job; this
// handler merely drops them.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.writer != nil {
		h.writeTail(h.writer)
		h.safeFlush(h.writer)
		h.safeClose(h.writer)
	}
	h.writer = nil
	h.closed = true
}

// Address returns the collector address being used
func (h *Handler) Address() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.address
}

// SetAddress changes the collector address, effective from the next publish
func (h *Handler) SetAddress(address string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.address = address
	h.pending = true
}

// Port returns the collector port being used
func (h *Handler) Port() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.port
}

// SetPort changes the collector port, effective from the next publish
func (h *Handler) SetPort(port int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.port = port
	h.pending = true
}

// Protocol returns the protocol being used
func (h *Handler) Protocol() Protocol {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.protocol
}

// SetProtocol changes the protocol, effective from the next publish
func (h *Handler) SetProtocol(protocol Protocol) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.protocol = protocol
	h.pending = true
}

// SetEncoding changes the charset of the socket writer, effective from the next publish
func (h *Handler) SetEncoding(encodingName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.encoding = encodingName
	h.pending = true
}

// initialize tears down any existing connection and opens a new one per the
// current parameters; caller must hold mu
//
// On failure the writer stays nil and pending stays set, so every following
// publish re-attempts initialization until one succeeds.
func (h *Handler) initialize() {
	current := h.writer
	h.writer = nil
	if current != nil {
		h.writeTail(current)
		h.safeFlush(current)
		h.safeClose(current)
	}

	conn, err := dialCollector(h.protocol, h.address, h.port)
	if err != nil {
		h.reporter.Report("failed to open socket connection", err, base.OpenFailure)
		h.metrics.OnError(err)
		return
	}
	writer, err := newConnWriter(conn, h.encoding)
	if err != nil {
		h.reporter.Report("failed to create socket writer", err, base.OpenFailure)
		h.metrics.OnError(err)
		_ = conn.Close()
		return
	}
	if head := h.formatter.Head(); len(head) > 0 {
		if werr := writer.WriteString(head); werr != nil {
			h.reporter.Report("failed to write head framing", werr, base.OpenFailure)
			h.metrics.OnError(werr)
			h.safeClose(writer)
			return
		}
	}
	h.writer = writer
	h.pending = false
	h.metrics.OnOpened()
	h.logger.Infof("connected to %s via %s", writer.RemoteAddr(), h.protocol)
}

// writeTail writes the tail framing before a connection goes away, best-effort
func (h *Handler) writeTail(writer *connWriter) {
	tail := h.formatter.Tail()
	if len(tail) == 0 {
		return
	}
	if err := writer.WriteString(tail); err != nil {
		h.reporter.Report("error writing tail framing", err, base.WriteFailure)
	}
}

func (h *Handler) safeFlush(writer *connWriter) {
	if writer == nil {
		return
	}
	if err := writer.Flush(); err != nil {
		h.reporter.Report("error flushing connection", err, base.FlushFailure)
	}
}

func (h *Handler) safeClose(writer *connWriter) {
	if writer == nil {
		return
	}
	if err := writer.Close(); err != nil {
		h.reporter.Report("error closing connection", err, base.CloseFailure)
	}
}
