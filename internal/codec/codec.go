// Package codec turns encoded files and bus payloads into frames and back.
// Supported encodings are CSV, JSON, YAML and MessagePack; the latter three
// share one document envelope.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"blcsview/internal/loaded"
)

// Format is a file encoding.
type Format uint8

const (
	FormatCSV Format = iota + 1
	FormatJSON
	FormatYAML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ContentType is the MIME type used by the HTTP receiver.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMsgpack:
		return "application/msgpack"
	default:
		return "application/octet-stream"
	}
}

// ErrUnknownFormat is returned for names and content types no codec handles.
var ErrUnknownFormat = errors.New("unknown file format")

// ParseError reports a file that could not be decoded.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatFor picks a format from a file extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(name))
	}
}

// FormatForContentType maps a MIME type to a format.
func FormatForContentType(ct string) (Format, error) {
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	switch ct {
	case "text/csv":
		return FormatCSV, nil
	case "application/json", "text/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML, nil
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%w: content type %q", ErrUnknownFormat, ct)
	}
}

// Decode parses a file by extension. Errors are *ParseError naming the file.
// Metadata the file does not carry defaults to the file's base name.
func Decode(name string, data []byte) (loaded.LoadedFrame, error) {
	format, err := FormatFor(name)
	if err != nil {
		return loaded.LoadedFrame{}, &ParseError{File: name, Err: err}
	}
	return DecodeAs(format, name, data)
}

// DecodeAs parses data in an explicit format.
func DecodeAs(format Format, name string, data []byte) (loaded.LoadedFrame, error) {
	var (
		lf  loaded.LoadedFrame
		err error
	)
	switch format {
	case FormatCSV:
		lf, err = decodeCSV(data)
	case FormatJSON, FormatYAML, FormatMsgpack:
		lf, err = decodeDocument(format, data)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return loaded.LoadedFrame{}, &ParseError{File: name, Err: err}
	}
	if lf.Meta.Name == "" {
		lf.Meta.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return lf, nil
}

// DecodePayload parses a bus payload: a JSON document when it starts with
// '{', MessagePack otherwise.
func DecodePayload(topic string, data []byte) (loaded.LoadedFrame, error) {
	trimmed := strings.TrimLeft(string(data[:min(len(data), 64)]), " \t\r\n")
	format := FormatMsgpack
	if strings.HasPrefix(trimmed, "{") {
		format = FormatJSON
	}
	return DecodeAs(format, topic, data)
}

// Encode serializes lf.
func Encode(format Format, lf loaded.LoadedFrame) ([]byte, error) {
	switch format {
	case FormatCSV:
		return encodeCSV(lf.Frame)
	case FormatJSON, FormatYAML, FormatMsgpack:
		return encodeDocument(format, lf)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
