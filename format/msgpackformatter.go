package format

import (
	"fmt"
	"io"

	"github.com/marschall/jboss-logmanager-ext/base"
	"github.com/vmihailenco/msgpack/v4"
)

// NewMsgpackFormatter creates a formatter producing one msgpack map per record,
// proving the generator abstraction is not tied to XML
//
// The document is a string-keyed map of wire names; absent values encode as nil
// and the exception encodes as a nested map with an array of frames. A binary
// stream needs no head or tail framing.
func NewMsgpackFormatter(keyOverrides map[Key]string) *StructuredFormatter {
	keys := NewKeyTable(keyOverrides)
	return &StructuredFormatter{
		keys: keys,
		newGenerator: func(writer io.Writer) base.Generator {
			return &msgpackGenerator{writer: writer, keys: keys}
		},
		head: "",
		tail: "",
	}
}

// msgpackGenerator collects fields and encodes them in one pass at End, because
// msgpack maps need their length before any entry is written
type msgpackGenerator struct {
	writer io.Writer
	keys   *KeyTable
	began  bool
	ended  bool
	fields []msgpackField
}

type msgpackField struct {
	name  string
	value any // nil | string | []msgpackField | *base.ExceptionInfo
}

func (g *msgpackGenerator) Begin() error {
	if g.began {
		return fmt.Errorf("document already begun")
	}
	g.began = true
	return nil
}

func (g *msgpackGenerator) AddField(name string, value base.Value) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if value.Present() {
		g.fields = append(g.fields, msgpackField{name: name, value: value.Text()})
	} else {
		g.fields = append(g.fields, msgpackField{name: name, value: nil})
	}
	return nil
}

func (g *msgpackGenerator) AddNestedMap(name string, fields *base.FieldMap) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if fields == nil {
		g.fields = append(g.fields, msgpackField{name: name, value: nil})
		return nil
	}
	nested := make([]msgpackField, 0, fields.Len())
	for _, entry := range fields.Entries() {
		if entry.Value.Present() {
			nested = append(nested, msgpackField{name: entry.Key, value: entry.Value.Text()})
		} else {
			nested = append(nested, msgpackField{name: entry.Key, value: nil})
		}
	}
	g.fields = append(g.fields, msgpackField{name: name, value: nested})
	return nil
}

func (g *msgpackGenerator) AddException(exception *base.ExceptionInfo) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if exception == nil {
		return nil
	}
	g.fields = append(g.fields, msgpackField{name: g.keys.Resolve(KeyException), value: exception})
	return nil
}

func (g *msgpackGenerator) End() error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	g.ended = true
	encoder := msgpack.NewEncoder(g.writer)
	if err := g.encodeFields(encoder, g.fields); err != nil {
		return err
	}
	if closable, ok := g.writer.(io.Closer); ok {
		_ = closable.Close()
	}
	return nil
}

func (g *msgpackGenerator) checkOpen() error {
	if !g.began {
		return fmt.Errorf("document not begun")
	}
	if g.ended {
		return fmt.Errorf("document already ended")
	}
	return nil
}

func (g *msgpackGenerator) encodeFields(encoder *msgpack.Encoder, fields []msgpackField) error {
	if err := encoder.EncodeMapLen(len(fields)); err != nil {
		return err
	}
	for _, field := range fields {
		if err := encoder.EncodeString(field.name); err != nil {
			return err
		}
		if err := g.encodeValue(encoder, field.value); err != nil {
			return err
		}
	}
	return nil
}

func (g *msgpackGenerator) encodeValue(encoder *msgpack.Encoder, value any) error {
	switch v := value.(type) {
	case nil:
		return encoder.EncodeNil()
	case string:
		return encoder.EncodeString(v)
	case []msgpackField:
		return g.encodeFields(encoder, v)
	case *base.ExceptionInfo:
		return g.encodeException(encoder, v)
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
}

func (g *msgpackGenerator) encodeException(encoder *msgpack.Encoder, exception *base.ExceptionInfo) error {
	keys := g.keys
	if err := encoder.EncodeMapLen(2); err != nil {
		return err
	}
	if err := encoder.EncodeString(keys.Resolve(KeyExceptionMessage)); err != nil {
		return err
	}
	if err := encoder.EncodeString(exception.Message); err != nil {
		return err
	}
	if err := encoder.EncodeString(keys.Resolve(KeyExceptionFrame)); err != nil {
		return err
	}
	if err := encoder.EncodeArrayLen(len(exception.Frames)); err != nil {
		return err
	}
	for _, frame := range exception.Frames {
		length := 2
		if frame.LineNumber >= 0 {
			length = 3
		}
		if err := encoder.EncodeMapLen(length); err != nil {
			return err
		}
		if err := encoder.EncodeString(keys.Resolve(KeyExceptionFrameClass)); err != nil {
			return err
		}
		if err := encoder.EncodeString(frame.ClassName); err != nil {
			return err
		}
		if err := encoder.EncodeString(keys.Resolve(KeyExceptionFrameMethod)); err != nil {
			return err
		}
		if err := encoder.EncodeString(frame.MethodName); err != nil {
			return err
		}
		if frame.LineNumber >= 0 {
			if err := encoder.EncodeString(keys.Resolve(KeyExceptionFrameLine)); err != nil {
				return err
			}
			if err := encoder.EncodeInt(int64(frame.LineNumber)); err != nil {
				return err
			}
		}
	}
	return nil
}
