// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// TagType is the type byte of a tag entry.
type TagType byte

// Tag types written by AddTag. Entries of the other BAM types ('A', 'c', 'C',
// 's', 'S', 'I', 'f', 'H', 'B') can be read but not written.
const (
	// TagInt is a 4-byte little-endian signed integer.
	TagInt TagType = 'i'
	// TagFloat is an 8-byte little-endian IEEE 754 double.
	TagFloat TagType = 'd'
	// TagText is NUL-terminated text.
	TagText TagType = 'Z'
)

// TagValue is a decoded tag payload. Only the member matching Type is set.
type TagValue struct {
	Type  TagType
	Int   int64
	Float float64
	Text  string
}

// IntValue returns an integer TagValue.
func IntValue(v int32) TagValue { return TagValue{Type: TagInt, Int: int64(v)} }

// FloatValue returns a floating-point TagValue.
func FloatValue(v float64) TagValue { return TagValue{Type: TagFloat, Float: v} }

// TextValue returns a text TagValue.
func TextValue(v string) TagValue { return TagValue{Type: TagText, Text: v} }

func (v TagValue) String() string {
	switch v.Type {
	case TagInt:
		return strconv.FormatInt(v.Int, 10)
	case TagFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Text
	}
}

// jumps[t] is the payload size of fixed-size type t, -1 for variable-size
// types, and 0 for bytes that are not tag types.
var jumps = [256]int{
	'A': 1,
	'c': 1, 'C': 1,
	's': 2, 'S': 2,
	'i': 4, 'I': 4,
	'f': 4,
	'd': 8,
	'Z': -1,
	'H': -1,
	'B': -1,
}

var errCorruptAuxField = errors.E(errors.Integrity, "bam: corrupt aux field")

// tagEnd returns the offset one past the entry that starts at aux[i].
func tagEnd(aux []byte, i int) (int, error) {
	if i+3 > len(aux) {
		return -1, errCorruptAuxField
	}
	t := aux[i+2]
	switch j := jumps[t]; {
	case j > 0:
		if i+3+j > len(aux) {
			return -1, errCorruptAuxField
		}
		return i + 3 + j, nil
	case j < 0:
		switch t {
		case 'Z', 'H':
			n := bytes.IndexByte(aux[i+3:], 0)
			if n < 0 {
				return -1, errCorruptAuxField
			}
			return i + 3 + n + 1, nil
		case 'B':
			if i+8 > len(aux) {
				return -1, errCorruptAuxField
			}
			size := jumps[aux[i+3]]
			if size <= 0 || aux[i+3] == 'A' || aux[i+3] == 'd' {
				return -1, errCorruptAuxField
			}
			end := i + 8 + int(binary.LittleEndian.Uint32(aux[i+4:i+8]))*size
			if end > len(aux) {
				return -1, errCorruptAuxField
			}
			return end, nil
		}
	}
	return -1, errCorruptAuxField
}

// validateAux checks that aux is a well-formed sequence of tag entries and
// returns their count.
func validateAux(aux []byte) (int, error) {
	n := 0
	for i := 0; i < len(aux); n++ {
		end, err := tagEnd(aux, i)
		if err != nil {
			return -1, err
		}
		i = end
	}
	return n, nil
}

// tagEntry is one entry of the aux field. start and end are offsets within
// the record buffer.
type tagEntry struct {
	raw        []byte
	start, end int
}

func (e tagEntry) name() string    { return string(e.raw[:2]) }
func (e tagEntry) typ() byte       { return e.raw[2] }
func (e tagEntry) payload() []byte { return e.raw[3:] }

func (e tagEntry) hasName(name string) bool {
	return len(name) == 2 && e.raw[0] == name[0] && e.raw[1] == name[1]
}

// value decodes the entry. Array entries ('B') are not decoded.
func (e tagEntry) value() (TagValue, bool) {
	p := e.payload()
	switch e.typ() {
	case 'c':
		return TagValue{Type: TagInt, Int: int64(int8(p[0]))}, true
	case 'C':
		return TagValue{Type: TagInt, Int: int64(p[0])}, true
	case 's':
		return TagValue{Type: TagInt, Int: int64(int16(binary.LittleEndian.Uint16(p)))}, true
	case 'S':
		return TagValue{Type: TagInt, Int: int64(binary.LittleEndian.Uint16(p))}, true
	case 'i':
		return TagValue{Type: TagInt, Int: int64(int32(binary.LittleEndian.Uint32(p)))}, true
	case 'I':
		return TagValue{Type: TagInt, Int: int64(binary.LittleEndian.Uint32(p))}, true
	case 'f':
		return TagValue{Type: TagFloat, Float: float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))}, true
	case 'd':
		return TagValue{Type: TagFloat, Float: math.Float64frombits(binary.LittleEndian.Uint64(p))}, true
	case 'A':
		return TagValue{Type: TagText, Text: string(p[:1])}, true
	case 'Z', 'H':
		return TagValue{Type: TagText, Text: string(p[:len(p)-1])}, true
	}
	return TagValue{}, false
}

// String formats the entry as a SAM optional field, e.g. "AS:i:42".
func (e tagEntry) String() string {
	t := e.typ()
	if t == 'B' {
		return e.name() + ":B:" + formatArray(e.payload())
	}
	v, _ := e.value()
	switch t {
	case 'c', 'C', 's', 'S', 'I':
		t = 'i'
	case 'd':
		t = 'f'
	}
	return fmt.Sprintf("%s:%c:%s", e.name(), t, v.String())
}

func formatArray(p []byte) string {
	sub := p[0]
	n := int(binary.LittleEndian.Uint32(p[1:5]))
	size := jumps[sub]
	parts := make([]string, 0, n+1)
	parts = append(parts, string(sub))
	for i := 0; i < n; i++ {
		e := tagEntry{raw: append([]byte{'x', 'x', sub}, p[5+i*size:5+(i+1)*size]...)}
		v, _ := e.value()
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

// forEachTag calls fn on every tag entry in order until fn returns false. A
// malformed aux field is a programming error and panics.
func (r *Record) forEachTag(fn func(e tagEntry) bool) {
	l := r.layout()
	aux := r.data[l.start(FieldAux):]
	for i := 0; i < len(aux); {
		end, err := tagEnd(aux, i)
		if err != nil {
			panic(fmt.Sprintf("bam: record %q: %v at aux offset %d", r.Name(), err, i))
		}
		e := tagEntry{raw: aux[i:end], start: l.start(FieldAux) + i, end: l.start(FieldAux) + end}
		if !fn(e) {
			return
		}
		i = end
	}
}

func (r *Record) findTag(name string) (tagEntry, bool) {
	var (
		found tagEntry
		ok    bool
	)
	r.forEachTag(func(e tagEntry) bool {
		if e.hasName(name) {
			found, ok = e, true
			return false
		}
		return true
	})
	return found, ok
}

// TagNames lists the tag names in buffer order.
func (r *Record) TagNames() []string {
	var names []string
	r.forEachTag(func(e tagEntry) bool {
		names = append(names, e.name())
		return true
	})
	return names
}

func validTagName(name string) error {
	if len(name) != 2 {
		return errors.E(errors.Invalid, fmt.Sprintf("bam: tag name %q must be two characters", name))
	}
	return nil
}

// AddTag appends a tag entry at the end of the aux field. Existing entries
// are relocated only because the buffer grows; AddTag does not check for an
// existing entry with the same name.
func (r *Record) AddTag(name string, v TagValue) error {
	if err := validTagName(name); err != nil {
		return err
	}
	var size int
	switch v.Type {
	case TagInt:
		if v.Int < math.MinInt32 || v.Int > math.MaxInt32 {
			return errors.E(errors.Invalid, fmt.Sprintf("bam: tag %s: %d overflows int32", name, v.Int))
		}
		size = 4
	case TagFloat:
		size = 8
	case TagText:
		if v.Text == "" {
			return errors.E(errors.Invalid, fmt.Sprintf("bam: tag %s: empty value", name))
		}
		if strings.IndexByte(v.Text, 0) >= 0 {
			return errors.E(errors.Invalid, fmt.Sprintf("bam: tag %s: value contains NUL", name))
		}
		size = len(v.Text) + 1
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("bam: tag %s: unsupported type %q", name, byte(v.Type)))
	}
	buf, window := r.splice(len(r.data), len(r.data), 3+size)
	window[0], window[1], window[2] = name[0], name[1], byte(v.Type)
	p := window[3:]
	switch v.Type {
	case TagInt:
		binary.LittleEndian.PutUint32(p, uint32(int32(v.Int)))
	case TagFloat:
		binary.LittleEndian.PutUint64(p, math.Float64bits(v.Float))
	case TagText:
		copy(p, v.Text)
		p[len(v.Text)] = 0
	}
	r.data = buf
	return nil
}

// Tag returns the value of the first entry named name.
func (r *Record) Tag(name string) (TagValue, bool) {
	e, ok := r.findTag(name)
	if !ok {
		return TagValue{}, false
	}
	return e.value()
}

// RemoveTag deletes the first entry named name and closes the gap. It
// reports whether an entry was removed.
func (r *Record) RemoveTag(name string) bool {
	e, ok := r.findTag(name)
	if !ok {
		return false
	}
	buf, _ := r.splice(e.start, e.end, 0)
	r.data = buf
	return true
}

// AddIntTag appends an integer tag.
func (r *Record) AddIntTag(name string, v int) error {
	return r.AddTag(name, TagValue{Type: TagInt, Int: int64(v)})
}

// AddFloatTag appends a floating-point tag.
func (r *Record) AddFloatTag(name string, v float64) error {
	return r.AddTag(name, FloatValue(v))
}

// AddTextTag appends a text tag.
func (r *Record) AddTextTag(name, v string) error {
	return r.AddTag(name, TextValue(v))
}

// IntTag returns the value of an integer tag. ok is false if the tag is
// absent or is not an integer.
func (r *Record) IntTag(name string) (v int, ok bool) {
	tv, ok := r.Tag(name)
	if !ok || tv.Type != TagInt {
		return 0, false
	}
	return int(tv.Int), true
}

// FloatTag returns the value of a floating-point tag.
func (r *Record) FloatTag(name string) (v float64, ok bool) {
	tv, ok := r.Tag(name)
	if !ok || tv.Type != TagFloat {
		return 0, false
	}
	return tv.Float, true
}

// TextTag returns the value of a text tag.
func (r *Record) TextTag(name string) (v string, ok bool) {
	tv, ok := r.Tag(name)
	if !ok || tv.Type != TagText {
		return "", false
	}
	return tv.Text, true
}
