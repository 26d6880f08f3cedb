// Package sockethandler ships formatted log records to a remote collector over
// a TCP, UDP or TLS socket, reconnecting lazily after configuration changes
package sockethandler

import (
	"fmt"

	"github.com/marschall/jboss-logmanager-ext/base"
	"github.com/marschall/jboss-logmanager-ext/defs"
	"github.com/marschall/jboss-logmanager-ext/format"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"golang.org/x/text/encoding/ianaindex"
)

// Protocol selects the type of socket to the collector
type Protocol string

// Supported protocols
const (
	ProtocolTCP Protocol = "tcp" // reliable stream
	ProtocolUDP Protocol = "udp" // unreliable datagrams
	ProtocolTLS Protocol = "tls" // TLS over TCP
)

// Record formats
const (
	FormatXML     = "xml"
	FormatMsgpack = "msgpack"
)

// Config defines the socket output section in config file
type Config struct {
	Address      string            `yaml:"address"`
	Port         int               `yaml:"port"`
	Protocol     Protocol          `yaml:"protocol"`
	Format       string            `yaml:"format"`
	Encoding     string            `yaml:"encoding"` // IANA charset name for the socket writer, empty = raw UTF-8
	PrettyPrint  bool              `yaml:"prettyPrint"`
	AutoFlush    bool              `yaml:"autoFlush"`
	KeyOverrides map[string]string `yaml:"keyOverrides"` // default wire name => replacement
}

// NewConfig creates a Config with defaults; unmarshal YAML on top of it so
// omitted sections keep their default values
func NewConfig() Config {
	return Config{
		Port:      defs.DefaultPort,
		Protocol:  ProtocolTCP,
		Format:    FormatXML,
		AutoFlush: true,
	}
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Address) == 0 {
		return fmt.Errorf(".address is unspecified")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf(".port: %d is not a valid port", cfg.Port)
	}
	switch cfg.Protocol {
	case ProtocolTCP, ProtocolUDP, ProtocolTLS:
	default:
		return fmt.Errorf(".protocol: '%s' is not a valid protocol", cfg.Protocol)
	}
	switch cfg.Format {
	case FormatXML, FormatMsgpack:
	default:
		return fmt.Errorf(".format: '%s' is not a valid format", cfg.Format)
	}
	if len(cfg.Encoding) > 0 {
		enc, err := ianaindex.IANA.Encoding(cfg.Encoding)
		if err != nil || enc == nil {
			return fmt.Errorf(".encoding: '%s' is not a supported charset", cfg.Encoding)
		}
	}
	for name := range cfg.KeyOverrides {
		if _, ok := format.KeyByName(name); !ok {
			return fmt.Errorf(".keyOverrides[%s]: unknown key", name)
		}
	}
	return nil
}

// NewFormatter creates the formatter selected by the configuration
func (cfg *Config) NewFormatter() (base.LogFormatter, error) {
	overrides := make(map[format.Key]string, len(cfg.KeyOverrides))
	for name, wireName := range cfg.KeyOverrides {
		key, ok := format.KeyByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown key '%s'", name)
		}
		overrides[key] = wireName
	}
	switch cfg.Format {
	case FormatMsgpack:
		return format.NewMsgpackFormatter(overrides), nil
	default:
		return format.NewXMLFormatter(overrides, cfg.PrettyPrint, cfg.Encoding), nil
	}
}

// NewHandler creates a Handler with the configured formatter and the default
// logging error reporter
func (cfg *Config) NewHandler(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (*Handler, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	formatter, err := cfg.NewFormatter()
	if err != nil {
		return nil, err
	}
	return NewHandler(parentLogger, *cfg, formatter, nil, metricCreator), nil
}
