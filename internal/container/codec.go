/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package container

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Document is a decoded payload: a JSON tree of *Object, []any and scalars.
// Numbers are kept as json.Number so integers survive a round trip unchanged,
// and objects keep their key order.
type Document = *Object

// Envelope holds the top-level keys of a bundle or setlist file other than
// "encoded_data".
type Envelope = *Object

const encodedDataKey = "encoded_data"

// now is replaced in tests.
var now = time.Now

// Decode parses a container of the given kind into its payload document and
// envelope. Preset files are returned verbatim with an empty envelope.
func Decode(data []byte, kind Kind) (Document, Envelope, error) {
	outer, err := parseObject(data)
	if err != nil {
		return nil, nil, &DecodeError{Kind: kind, Stage: "envelope", Err: err}
	}
	if !kind.Compressed() {
		return outer, NewObject(), nil
	}
	raw, ok := outer.Get(encodedDataKey).(string)
	if !ok {
		return nil, nil, &DecodeError{Kind: kind, Stage: "envelope", Err: errors.New("missing encoded_data string")}
	}
	outer.Delete(encodedDataKey)

	payload, stage, err := inflate(raw)
	if err != nil {
		return nil, nil, &DecodeError{Kind: kind, Stage: stage, Err: err}
	}
	doc, err := parseObject(payload)
	if err != nil {
		return nil, nil, &DecodeError{Kind: kind, Stage: "payload", Err: err}
	}
	return doc, outer, nil
}

// Verify decodes a bundle or setlist file and checks that the recorded
// decompressed size and CRC-32 match the payload bytes.
func Verify(data []byte, kind Kind) error {
	if !kind.Compressed() {
		return nil
	}
	outer, err := parseObject(data)
	if err != nil {
		return &DecodeError{Kind: kind, Stage: "envelope", Err: err}
	}
	raw, _ := outer.Get(encodedDataKey).(string)
	payload, stage, err := inflate(raw)
	if err != nil {
		return &DecodeError{Kind: kind, Stage: stage, Err: err}
	}
	size, sum, err := Compression(outer)
	if err != nil {
		return &DecodeError{Kind: kind, Stage: "checksum", Err: err}
	}
	if size != int64(len(payload)) {
		return &DecodeError{Kind: kind, Stage: "checksum", Err: fmt.Errorf("decompressed_size %d, payload has %d bytes", size, len(payload))}
	}
	if got := crc32.ChecksumIEEE(payload); got != sum {
		return &DecodeError{Kind: kind, Stage: "checksum", Err: fmt.Errorf("crc32 %d, payload has %d", sum, got)}
	}
	return nil
}

// Compression returns the decompressed size and CRC-32 recorded in an envelope.
func Compression(env Envelope) (size int64, sum uint32, err error) {
	c := env.Object("compression")
	if c == nil {
		return 0, 0, errors.New("missing compression section")
	}
	size, err = toInt64(c.Get("decompressed_size"))
	if err != nil {
		return 0, 0, fmt.Errorf("decompressed_size: %w", err)
	}
	s, err := toInt64(c.Get("crc32"))
	if err != nil {
		return 0, 0, fmt.Errorf("crc32: %w", err)
	}
	if s < 0 || s > int64(^uint32(0)) {
		return 0, 0, fmt.Errorf("crc32 %d out of range", s)
	}
	return size, uint32(s), nil
}

// Seal compresses doc and returns a new envelope describing it. env is not
// modified; when it is empty the kind's built-in template envelope is used.
func Seal(doc Document, env Envelope, kind Kind, name string) (Envelope, error) {
	if !kind.Compressed() {
		return nil, fmt.Errorf("container: %s files are not compressed", kind)
	}
	payload, err := marshalCompact(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	var out Envelope
	if env.Len() > 0 {
		out = Clone(env).(*Object)
	} else {
		_, tmpl, err := Template(kind)
		if err != nil {
			return nil, err
		}
		out = tmpl
	}
	out.Delete(encodedDataKey)

	meta := out.Section("meta")
	meta.Set("name", name)
	meta.Set("modifieddate", now().Unix())
	comp := out.Section("compression")
	comp.Set("decompressed_size", len(payload))
	comp.Set("crc32", crc32.ChecksumIEEE(payload))
	out.Set(encodedDataKey, base64.StdEncoding.EncodeToString(zbuf.Bytes()))
	return out, nil
}

// Encode renders a complete container file. For bundles and setlists the
// returned envelope is the one written to the file (including encoded_data);
// for presets it is nil.
func Encode(doc Document, env Envelope, kind Kind, name string) ([]byte, Envelope, error) {
	if !kind.Compressed() {
		b, err := marshalIndent(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal %s: %w", kind, err)
		}
		return b, nil, nil
	}
	sealed, err := Seal(doc, env, kind, name)
	if err != nil {
		return nil, nil, err
	}
	b, err := marshalIndent(sealed)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, sealed, nil
}

// Marshal serializes v the same way payloads are serialized: compact, with
// object keys in document order and no HTML escaping.
func Marshal(v any) ([]byte, error) { return marshalCompact(v) }

// MarshalIndent serializes v with the one-space indentation used for files.
func MarshalIndent(v any) ([]byte, error) { return marshalIndent(v) }

func inflate(raw string) ([]byte, string, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, "base64", err
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, "zlib", err
	}
	defer zr.Close()
	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, "zlib", err
	}
	if !utf8.Valid(payload) {
		return nil, "utf8", errors.New("payload is not valid UTF-8")
	}
	return bytes.TrimSpace(payload), "", nil
}

func parseObject(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, errors.New("top-level value is not an object")
	}
	return obj, nil
}

func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// Clone returns a deep copy of a JSON value tree built from objects, slices
// and scalars. Key order is kept.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return t
		}
		o := &Object{keys: slices.Clone(t.keys), vals: make(map[string]any, len(t.vals))}
		for k, e := range t.vals {
			o.vals[k] = Clone(e)
		}
		return o
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = Clone(e)
		}
		return s
	default:
		return v
	}
}
