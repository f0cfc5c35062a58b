// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const encodeIndent = "    "

var numberLiteral = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

func isNumberLiteral(s string) bool {
	return numberLiteral.MatchString(s)
}

// Decode parses a single JSON document. Numbers keep their literal text.
// Anything other than exactly one JSON value (surrounded by optional
// whitespace) is a [*DecodeError], and so is input that is not valid
// UTF-8.
func Decode(data []byte) (Value, error) {
	if !utf8.Valid(data) {
		return nil, &DecodeError{Err: errors.New("document is not valid UTF-8")}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &DecodeError{Err: err}
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v after end of document", tok)
		}
		return nil, &DecodeError{Err: err}
	}

	v, err := FromGo(raw)
	if err != nil {
		// encoding/json only produces types FromGo understands.
		return nil, &DecodeError{Err: err}
	}
	return v, nil
}

// Encode renders v in the canonical persisted form: map keys sorted by
// code point, four-space indentation, "," between items and ": " between
// a key and its value, non-ASCII characters escaped, and exactly one
// trailing newline.
//
// The whole value is validated before any output is produced, so a
// [*EncodeError] is returned without a partial result.
func Encode(v Value) ([]byte, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	encodeValue(&buf, v, 0)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Validate reports the first part of v that the codec cannot represent.
func Validate(v Value) error {
	return validate(v, nil)
}

func validate(v Value, path Path) error {
	switch v := v.(type) {
	case nil:
		return &EncodeError{Path: path, Reason: "nil value (use document.Null{} for JSON null)"}
	case Null, Bool:
		return nil
	case Number:
		if !isNumberLiteral(string(v)) {
			return &EncodeError{Path: path, Reason: fmt.Sprintf("%q is not a JSON number", string(v))}
		}
	case String:
		if !utf8.ValidString(string(v)) {
			return &EncodeError{Path: path, Reason: "string is not valid UTF-8"}
		}
	case List:
		for i, elem := range v {
			if err := validate(elem, path.Child(Index(i))); err != nil {
				return err
			}
		}
	case Map:
		for _, k := range v.Keys() {
			if !utf8.ValidString(k) {
				return &EncodeError{Path: path, Reason: fmt.Sprintf("map key %q is not valid UTF-8", k)}
			}
			if err := validate(v[k], path.Child(Key(k))); err != nil {
				return err
			}
		}
	default:
		return &EncodeError{Path: path, Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) {
	switch v := v.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(string(v))
	case String:
		encodeString(buf, string(v))
	case List:
		if len(v) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, depth+1)
			encodeValue(buf, elem, depth+1)
		}
		newline(buf, depth)
		buf.WriteByte(']')
	case Map:
		if len(v) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, depth+1)
			encodeString(buf, k)
			buf.WriteString(": ")
			encodeValue(buf, v[k], depth+1)
		}
		newline(buf, depth)
		buf.WriteByte('}')
	}
}

func newline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(encodeIndent, depth))
}

// encodeString writes s as a JSON string literal using only printable
// ASCII; everything outside 0x20-0x7e is escaped.
func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r >= 0x20 && r <= 0x7e {
				buf.WriteRune(r)
				continue
			}
			if r > 0xffff {
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(buf, `\u%04x\u%04x`, hi, lo)
				continue
			}
			fmt.Fprintf(buf, `\u%04x`, r)
		}
	}
	buf.WriteByte('"')
}
