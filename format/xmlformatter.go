package format

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/marschall/jboss-logmanager-ext/base"
)

// NewXMLFormatter creates a formatter producing one XML element per record
//
// charset only affects the XML declaration in the head framing; the actual byte
// encoding is applied by the transport writer. Pretty printing indents nested
// elements without changing semantic content.
func NewXMLFormatter(keyOverrides map[Key]string, prettyPrint bool, charset string) *StructuredFormatter {
	keys := NewKeyTable(keyOverrides)
	if len(charset) == 0 {
		charset = "UTF-8"
	}
	return &StructuredFormatter{
		keys: keys,
		newGenerator: func(writer io.Writer) base.Generator {
			return &xmlGenerator{writer: writer, keys: keys, pretty: prettyPrint}
		},
		head: fmt.Sprintf("<?xml version=\"1.0\" encoding=\"%s\"?>\n", charset),
		tail: "\n",
	}
}

// xmlGenerator writes one XML document, tracking open elements explicitly so
// mismatched start/end calls surface as errors instead of malformed output
type xmlGenerator struct {
	writer io.Writer
	keys   *KeyTable
	pretty bool
	stack  []xmlElement
}

type xmlElement struct {
	name        string
	hasChildren bool
}

func (g *xmlGenerator) Begin() error {
	return g.writeStart(g.keys.Resolve(KeyRecord))
}

func (g *xmlGenerator) AddField(name string, value base.Value) error {
	if !value.Present() {
		return g.writeEmpty(name)
	}
	if err := g.writeStart(name); err != nil {
		return err
	}
	if err := xml.EscapeText(g.writer, []byte(value.Text())); err != nil {
		return err
	}
	return g.writeEnd()
}

func (g *xmlGenerator) AddNestedMap(name string, fields *base.FieldMap) error {
	if fields == nil {
		return g.writeEmpty(name)
	}
	if err := g.writeStart(name); err != nil {
		return err
	}
	for _, entry := range fields.Entries() {
		if err := g.AddField(entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return g.writeEnd()
}

func (g *xmlGenerator) AddException(exception *base.ExceptionInfo) error {
	if exception == nil {
		return nil
	}
	keys := g.keys
	if err := g.writeStart(keys.Resolve(KeyException)); err != nil {
		return err
	}
	if err := g.AddField(keys.Resolve(KeyExceptionMessage), base.String(exception.Message)); err != nil {
		return err
	}
	for _, frame := range exception.Frames {
		if err := g.writeStart(keys.Resolve(KeyExceptionFrame)); err != nil {
			return err
		}
		if err := g.AddField(keys.Resolve(KeyExceptionFrameClass), base.String(frame.ClassName)); err != nil {
			return err
		}
		if err := g.AddField(keys.Resolve(KeyExceptionFrameMethod), base.String(frame.MethodName)); err != nil {
			return err
		}
		if frame.LineNumber >= 0 {
			if err := g.AddField(keys.Resolve(KeyExceptionFrameLine), base.Int(frame.LineNumber)); err != nil {
				return err
			}
		}
		if err := g.writeEnd(); err != nil {
			return err
		}
	}
	return g.writeEnd()
}

func (g *xmlGenerator) End() error {
	if err := g.writeEnd(); err != nil {
		return err
	}
	if len(g.stack) != 0 {
		return fmt.Errorf("%d elements left open after end of document", len(g.stack))
	}
	// best-effort teardown: failures must neither propagate nor prevent each other
	if flushable, ok := g.writer.(interface{ Flush() error }); ok {
		_ = flushable.Flush()
	}
	if closable, ok := g.writer.(io.Closer); ok {
		_ = closable.Close()
	}
	return nil
}

func (g *xmlGenerator) writeStart(name string) error {
	if err := g.breakLine(); err != nil {
		return err
	}
	if err := g.writeString("<" + name + ">"); err != nil {
		return err
	}
	g.stack = append(g.stack, xmlElement{name: name})
	return nil
}

func (g *xmlGenerator) writeEmpty(name string) error {
	if err := g.breakLine(); err != nil {
		return err
	}
	return g.writeString("<" + name + "/>")
}

func (g *xmlGenerator) writeEnd() error {
	if len(g.stack) == 0 {
		return fmt.Errorf("end of element without a matching start")
	}
	top := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	if g.pretty && top.hasChildren {
		if err := g.writeString("\n" + strings.Repeat("  ", len(g.stack))); err != nil {
			return err
		}
	}
	return g.writeString("</" + top.name + ">")
}

// breakLine starts a new indented line before a child element in pretty mode
func (g *xmlGenerator) breakLine() error {
	if len(g.stack) > 0 {
		g.stack[len(g.stack)-1].hasChildren = true
	}
	if !g.pretty || len(g.stack) == 0 {
		return nil
	}
	return g.writeString("\n" + strings.Repeat("  ", len(g.stack)))
}

func (g *xmlGenerator) writeString(text string) error {
	_, err := io.WriteString(g.writer, text)
	return err
}
