package sockethandler

import (
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marschall/jboss-logmanager-ext/base"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportedFailure struct {
	message string
	cause   error
	kind    base.FailureKind
}

// testReporter collects failures instead of logging them
type testReporter struct {
	mu      sync.Mutex
	reports []reportedFailure
}

func (r *testReporter) Report(message string, cause error, kind base.FailureKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, reportedFailure{message: message, cause: cause, kind: kind})
}

func (r *testReporter) kinds() []base.FailureKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]base.FailureKind, len(r.reports))
	for i, report := range r.reports {
		kinds[i] = report.kind
	}
	return kinds
}

// startTCPCollector accepts one connection and forwards everything it receives
func startTCPCollector(t *testing.T) (int, chan string) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	received := make(chan string, 1)
	go func() {
		defer listener.Close()
		conn, aerr := listener.Accept()
		if aerr != nil {
			received <- fmt.Sprintf("accept error: %s", aerr)
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- string(data)
	}()
	return listener.Addr().(*net.TCPAddr).Port, received
}

func waitReceived(t *testing.T, received chan string) string {
	select {
	case data := <-received:
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for collector to receive data")
		return ""
	}
}

func newTestMetricCreator() promreg.MetricCreator {
	return promreg.NewMetricFactory("testsockethandler_", nil, nil)
}

func newBootRecord() *base.LogRecord {
	return &base.LogRecord{
		Timestamp:      time.Date(2022, 7, 20, 10, 30, 0, 0, time.UTC),
		SequenceNumber: -1,
		Level:          base.LevelInfo,
		Message:        "boot",
		// source location unknown
		SourceLineNumber: -1,
	}
}

// receivedRecord maps the fixed XML schema for decode-side verification
type receivedRecord struct {
	XMLName          xml.Name `xml:"record"`
	Timestamp        string   `xml:"timestamp"`
	Sequence         string   `xml:"sequence"`
	LoggerName       string   `xml:"loggerName"`
	Level            string   `xml:"level"`
	Message          string   `xml:"message"`
	SourceClassName  string   `xml:"sourceClassName"`
	SourceFileName   string   `xml:"sourceFileName"`
	SourceMethodName string   `xml:"sourceMethodName"`
	SourceLineNumber string   `xml:"sourceLineNumber"`
}

func TestPublishOverTCP(t *testing.T) {
	port, received := startTCPCollector(t)

	cfg := NewConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = port
	handler, err := cfg.NewHandler(logger.Root(), newTestMetricCreator())
	require.Nil(t, err)

	handler.Publish(newBootRecord())
	handler.Close()

	data := waitReceived(t, received)
	assert.True(t, strings.HasPrefix(data, "<?xml version=\"1.0\""), "head framing must come first")
	assert.True(t, strings.HasSuffix(data, "</record>\n"), "tail framing must close the stream")

	var record receivedRecord
	decoder := xml.NewDecoder(strings.NewReader(data))
	require.Nil(t, decoder.Decode(&record))
	assert.Equal(t, "boot", record.Message)
	assert.Equal(t, "INFO", record.Level)
	assert.Empty(t, record.Sequence)
	assert.Empty(t, record.SourceClassName)
}

func TestPublishOverUDP(t *testing.T) {
	packetConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.Nil(t, err)
	defer packetConn.Close()

	cfg := NewConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = packetConn.LocalAddr().(*net.UDPAddr).Port
	cfg.Protocol = ProtocolUDP
	handler, err := cfg.NewHandler(logger.Root(), newTestMetricCreator())
	require.Nil(t, err)
	defer handler.Close()

	handler.Publish(newBootRecord())

	require.Nil(t, packetConn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buffer := make([]byte, 64*1024)
	n, _, err := packetConn.ReadFrom(buffer)
	require.Nil(t, err)
	assert.Contains(t, string(buffer[:n]), "<message>boot</message>")
}

func TestReinitializeOnConfigChange(t *testing.T) {
	firstPort, firstReceived := startTCPCollector(t)
	secondPort, secondReceived := startTCPCollector(t)

	cfg := NewConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = firstPort
	handler, err := cfg.NewHandler(logger.Root(), newTestMetricCreator())
	require.Nil(t, err)

	first := newBootRecord()
	first.Message = "one"
	handler.Publish(first)

	handler.SetPort(secondPort)

	second := newBootRecord()
	second.Message = "two"
	handler.Publish(second)
	handler.Close()

	firstData := waitReceived(t, firstReceived)
	assert.Contains(t, firstData, "<message>one</message>")
	assert.NotContains(t, firstData, "<message>two</message>")
	assert.True(t, strings.HasSuffix(firstData, "\n"), "tail framing must be written before teardown")

	secondData := waitReceived(t, secondReceived)
	assert.True(t, strings.HasPrefix(secondData, "<?xml"), "new connection must start with head framing")
	assert.Contains(t, secondData, "<message>two</message>")
}

func TestFailedConnectionDropsSilently(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	deadPort := listener.Addr().(*net.TCPAddr).Port
	require.Nil(t, listener.Close())

	cfg := NewConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = deadPort
	formatter, err := cfg.NewFormatter()
	require.Nil(t, err)
	reporter := &testReporter{}
	handler := NewHandler(logger.Root(), cfg, formatter, reporter, newTestMetricCreator())
	defer handler.Close()

	handler.Publish(newBootRecord())
	handler.Publish(newBootRecord())

	kinds := reporter.kinds()
	require.Len(t, kinds, 2, "every publish re-attempts initialization until one succeeds")
	assert.Equal(t, base.OpenFailure, kinds[0])
	assert.Equal(t, base.OpenFailure, kinds[1])
}

type silentFormatter struct{}

func (silentFormatter) Format(record *base.LogRecord) (string, error) { return "", nil }
func (silentFormatter) Head() string                                  { return "" }
func (silentFormatter) Tail() string                                  { return "" }

func TestEmptyOutputSkipsConnection(t *testing.T) {
	cfg := NewConfig()
	cfg.Address = "203.0.113.1" // never dialed; publishing would hang otherwise
	reporter := &testReporter{}
	handler := NewHandler(logger.Root(), cfg, silentFormatter{}, reporter, newTestMetricCreator())
	defer handler.Close()

	handler.Publish(newBootRecord())
	assert.Empty(t, reporter.kinds(), "empty formatted output must cause no connection activity")
}

type failingFormatter struct{}

func (failingFormatter) Format(record *base.LogRecord) (string, error) {
	return "", fmt.Errorf("no can do")
}
func (failingFormatter) Head() string { return "" }
func (failingFormatter) Tail() string { return "" }

func TestFormatFailureReported(t *testing.T) {
	cfg := NewConfig()
	cfg.Address = "203.0.113.1"
	reporter := &testReporter{}
	handler := NewHandler(logger.Root(), cfg, failingFormatter{}, reporter, newTestMetricCreator())
	defer handler.Close()

	handler.Publish(newBootRecord())
	require.Len(t, reporter.kinds(), 1)
	assert.Equal(t, base.FormatFailure, reporter.kinds()[0])
}

func TestCloseIsTerminal(t *testing.T) {
	port, received := startTCPCollector(t)

	cfg := NewConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = port
	formatter, err := cfg.NewFormatter()
	require.Nil(t, err)
	reporter := &testReporter{}
	handler := NewHandler(logger.Root(), cfg, formatter, reporter, newTestMetricCreator())

	handler.Publish(newBootRecord())
	handler.Close()
	handler.Close() // repeated close is harmless

	data := waitReceived(t, received)
	assert.Contains(t, data, "<message>boot</message>")

	handler.Publish(newBootRecord())
	assert.Empty(t, reporter.kinds(), "publish after close must drop without reconnecting")
}

func TestSettersUnderConcurrentPublish(t *testing.T) {
	port, received := startTCPCollector(t)

	cfg := NewConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = port
	handler, err := cfg.NewHandler(logger.Root(), newTestMetricCreator())
	require.Nil(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			record := newBootRecord()
			record.Message = fmt.Sprintf("msg-%d", n)
			handler.Publish(record)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, port, handler.Port())
	assert.Equal(t, ProtocolTCP, handler.Protocol())
	assert.Equal(t, "127.0.0.1", handler.Address())
	handler.Close()

	data := waitReceived(t, received)
	assert.Equal(t, 4, strings.Count(data, "</record>"))
}
