package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"blcsview/internal/frame"
	"blcsview/internal/loaded"
)

// document is the envelope shared by the JSON, YAML and MessagePack codecs.
type document struct {
	Meta    metaDoc     `json:"meta" yaml:"meta" msgpack:"meta"`
	Columns []columnDoc `json:"columns" yaml:"columns" msgpack:"columns"`
}

type metaDoc struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty" msgpack:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	Authors     string `json:"authors,omitempty" yaml:"authors,omitempty" msgpack:"authors,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty" msgpack:"date,omitempty"`
}

type columnDoc struct {
	Name   string `json:"name" yaml:"name" msgpack:"name"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Values []any  `json:"values" yaml:"values" msgpack:"values"`
}

var errNoColumns = errors.New("document has no columns")

func unmarshal(format Format, data []byte, v any) error {
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", format, err)
	}
	return nil
}

func decodeDocument(format Format, data []byte) (loaded.LoadedFrame, error) {
	var doc document
	if err := unmarshal(format, data, &doc); err != nil {
		return loaded.LoadedFrame{}, err
	}
	if len(doc.Columns) == 0 {
		return loaded.LoadedFrame{}, errNoColumns
	}
	cols := make([]frame.Column, 0, len(doc.Columns))
	for _, cd := range doc.Columns {
		c, err := cd.column()
		if err != nil {
			return loaded.LoadedFrame{}, err
		}
		cols = append(cols, c)
	}
	f, err := frame.New(cols...)
	if err != nil {
		return loaded.LoadedFrame{}, err
	}
	meta := loaded.Meta{
		Name:        doc.Meta.Name,
		Version:     doc.Meta.Version,
		Description: doc.Meta.Description,
		Authors:     doc.Meta.Authors,
	}
	if doc.Meta.Date != "" {
		ts, err := parseTime(doc.Meta.Date)
		if err != nil {
			return loaded.LoadedFrame{}, fmt.Errorf("meta date: %w", err)
		}
		meta.Date = ts
	}
	return loaded.LoadedFrame{Meta: meta, Frame: f}, nil
}

func (cd columnDoc) column() (frame.Column, error) {
	typ, err := cd.resolveType()
	if err != nil {
		return frame.Column{}, fmt.Errorf("column %q: %w", cd.Name, err)
	}
	wrap := func(i int, err error) error {
		return fmt.Errorf("column %q row %d: %w", cd.Name, i, err)
	}
	switch typ {
	case frame.TypeInt:
		out := make([]int64, len(cd.Values))
		for i, v := range cd.Values {
			if out[i], err = toInt(v); err != nil {
				return frame.Column{}, wrap(i, err)
			}
		}
		return frame.Ints(cd.Name, out...), nil
	case frame.TypeUint:
		out := make([]uint64, len(cd.Values))
		for i, v := range cd.Values {
			if out[i], err = toUint(v); err != nil {
				return frame.Column{}, wrap(i, err)
			}
		}
		return frame.Uints(cd.Name, out...), nil
	case frame.TypeString:
		out := make([]string, len(cd.Values))
		for i, v := range cd.Values {
			out[i] = toString(v)
		}
		return frame.Strings(cd.Name, out...), nil
	case frame.TypeTime:
		out := make([]time.Time, len(cd.Values))
		for i, v := range cd.Values {
			if out[i], err = toTime(v); err != nil {
				return frame.Column{}, wrap(i, err)
			}
		}
		return frame.Times(cd.Name, out...), nil
	default:
		out := make([]float64, len(cd.Values))
		for i, v := range cd.Values {
			if out[i], err = toFloat(v); err != nil {
				return frame.Column{}, wrap(i, err)
			}
		}
		return frame.Floats(cd.Name, out...), nil
	}
}

// resolveType honours an explicit type, else infers it from the first
// non-null value.
func (cd columnDoc) resolveType() (frame.Type, error) {
	if cd.Type != "" {
		return frame.ParseType(cd.Type)
	}
	for _, v := range cd.Values {
		if v == nil {
			continue
		}
		return inferType(v), nil
	}
	return frame.TypeFloat, nil
}

func encodeDocument(format Format, lf loaded.LoadedFrame) ([]byte, error) {
	doc := document{
		Meta: metaDoc{
			Name:        lf.Meta.Name,
			Version:     lf.Meta.Version,
			Description: lf.Meta.Description,
			Authors:     lf.Meta.Authors,
		},
	}
	if !lf.Meta.Date.IsZero() {
		doc.Meta.Date = lf.Meta.Date.Format(time.RFC3339Nano)
	}
	for _, c := range lf.Frame.Columns() {
		cd := columnDoc{Name: c.Name(), Type: c.Type().String(), Values: make([]any, c.Len())}
		for i := range cd.Values {
			v := c.Value(i)
			if ts, ok := v.(time.Time); ok && format != FormatMsgpack {
				v = ts.Format(time.RFC3339Nano)
			}
			cd.Values[i] = v
		}
		doc.Columns = append(doc.Columns, cd)
	}
	var (
		out []byte
		err error
	)
	switch format {
	case FormatJSON:
		out, err = json.Marshal(doc)
	case FormatYAML:
		out, err = yaml.Marshal(doc)
	case FormatMsgpack:
		out, err = msgpack.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return out, nil
}
