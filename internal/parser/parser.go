package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/mcncl/credscrub/internal/errors" // Custom errors package
	"github.com/mcncl/credscrub/internal/models"
	"github.com/tidwall/gjson"
)

// utf8BOM is written by many Windows editors at the start of appsettings.json files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseBytes parses data into a Document. Object keys keep their order
// from the source text and numbers keep their exact literal. Input that is
// not valid UTF-8 is rejected rather than having bad bytes replaced.
func ParseBytes(data []byte) (models.Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	if !utf8.Valid(data) {
		return models.Document{}, errors.NewParsingError(
			fmt.Sprintf("invalid UTF-8 sequence at offset %d", invalidUTF8Offset(data)),
			errors.ErrInvalidEncoding,
		)
	}

	if !gjson.ValidBytes(data) {
		return models.Document{}, describeInvalid(data)
	}

	root := gjson.ParseBytes(data)
	doc := models.Document{Root: convert(root)}

	// gjson reports objects and arrays as Type JSON; anything else is a bare scalar
	switch {
	case root.IsObject():
		doc.RootKind = models.RootObject
	case root.IsArray():
		doc.RootKind = models.RootArray
	default:
		doc.RootKind = models.RootScalar
	}

	return doc, nil
}

// convert turns a gjson result into our model types
func convert(r gjson.Result) models.JSONValue {
	switch {
	case r.IsObject():
		obj := models.NewJSONObject()
		r.ForEach(func(key, value gjson.Result) bool {
			obj.Set(key.Str, convert(value))
			return true
		})
		return obj
	case r.IsArray():
		arr := make(models.JSONArray, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, convert(value))
			return true
		})
		return arr
	}

	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8 sequence
func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// describeInvalid builds a parse error for data that failed validation.
// encoding/json is only used here because it reports where the syntax breaks.
func describeInvalid(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	var first json.RawMessage
	if err := decoder.Decode(&first); err != nil {
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return errors.NewParsingError("failed to decode JSON", err)
	}

	// The first value decoded fine, so the problem is whatever follows it
	if decoder.More() {
		var trailing json.RawMessage
		if err := decoder.Decode(&trailing); err == nil {
			return errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
		return errors.NewParsingError(
			fmt.Sprintf("invalid trailing data after offset %d", decoder.InputOffset()),
			errors.ErrInvalidJSON,
		)
	}
	return errors.NewParsingError("invalid JSON document", errors.ErrInvalidJSON)
}
