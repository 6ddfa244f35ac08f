package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcncl/credscrub/internal/models"
	"github.com/tidwall/pretty"
)

// Formatter serializes a JSON document back to indented text
type Formatter struct {
	options *pretty.Options
}

// NewFormatter creates a Formatter using two-space indentation. Keys are
// never sorted: the output keeps the order of the input document.
func NewFormatter() *Formatter {
	return &Formatter{
		options: &pretty.Options{
			Width:    80,
			Prefix:   "",
			Indent:   "  ",
			SortKeys: false,
		},
	}
}

// Format renders value as pretty-printed JSON terminated by a newline.
// Characters outside ASCII and HTML-sensitive characters are written as-is.
func (f *Formatter) Format(value models.JSONValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, value); err != nil {
		return nil, err
	}
	out := pretty.PrettyOptions(buf.Bytes(), f.options)
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

// writeValue writes the compact encoding of value to buf
func writeValue(buf *bytes.Buffer, value models.JSONValue) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(v.String())
	case string:
		return writeString(buf, v)
	case models.JSONArray:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *models.JSONObject:
		buf.WriteByte('{')
		for i, key := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			child, _ := v.Get(key)
			if err := writeValue(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported JSON value of type %T", value)
	}
	return nil
}

// writeString quotes s. HTML escaping is disabled so "<SECRET>" stays readable.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	encoder := json.NewEncoder(&tmp)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	// Encode always appends a newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
