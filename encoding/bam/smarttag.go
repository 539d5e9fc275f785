// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// SmartTagDelimiter separates the values of a smart tag.
const SmartTagDelimiter = '^'

// SmartValue is the decoded form of a smart tag: either a single value or an
// ordered list of values. The zero SmartValue is an absent tag.
type SmartValue struct {
	values []string
}

// Scalar returns a single-valued SmartValue.
func Scalar(v string) SmartValue { return SmartValue{values: []string{v}} }

// List returns a SmartValue holding vs in order.
func List(vs ...string) SmartValue { return SmartValue{values: append([]string(nil), vs...)} }

// ParseSmartValue splits a serialized smart tag payload.
func ParseSmartValue(text string) SmartValue {
	return SmartValue{values: strings.Split(text, string(SmartTagDelimiter))}
}

// IsScalar reports whether v holds exactly one value.
func (v SmartValue) IsScalar() bool { return len(v.values) == 1 }

// IsList reports whether v holds more than one value.
func (v SmartValue) IsList() bool { return len(v.values) > 1 }

// Len is the number of values.
func (v SmartValue) Len() int { return len(v.values) }

// Values returns the values in order.
func (v SmartValue) Values() []string { return v.values }

// Append returns v with s added at the end.
func (v SmartValue) Append(s string) SmartValue {
	vals := make([]string, len(v.values), len(v.values)+1)
	copy(vals, v.values)
	return SmartValue{values: append(vals, s)}
}

// String serializes v: the values joined by SmartTagDelimiter.
func (v SmartValue) String() string {
	return strings.Join(v.values, string(SmartTagDelimiter))
}

// SmartAddTag adds value to the smart tag name. An absent tag is created with
// the single value; otherwise the old entry is removed and the list extended
// by value is appended. A value containing SmartTagDelimiter is written as-is
// and will read back as several values; a warning is logged.
func (r *Record) SmartAddTag(name, value string) error {
	if err := validTagName(name); err != nil {
		return err
	}
	if value == "" {
		return errors.E(errors.Invalid, fmt.Sprintf("bam: tag %s: empty value", name))
	}
	if strings.IndexByte(value, SmartTagDelimiter) >= 0 {
		log.Error.Printf("bam: record %q: value %q for smart tag %s contains the delimiter %q",
			r.Name(), value, name, SmartTagDelimiter)
	}
	e, ok := r.findTag(name)
	if !ok {
		return r.AddTextTag(name, value)
	}
	old, ok := e.value()
	if !ok || old.Type != TagText {
		return errors.E(errors.Invalid, fmt.Sprintf("bam: tag %s: smart tags must be text, found type %q", name, e.typ()))
	}
	joined := ParseSmartValue(old.Text).Append(value).String()
	r.RemoveTag(name)
	return r.AddTextTag(name, joined)
}

// SmartTag reads the smart tag name. The result is the zero SmartValue if the
// tag is absent or not text.
func (r *Record) SmartTag(name string) SmartValue {
	v, ok := r.TextTag(name)
	if !ok {
		return SmartValue{}
	}
	return ParseSmartValue(v)
}

// SmartTextTag returns the values of the smart tag name, or nil if absent.
func (r *Record) SmartTextTag(name string) []string {
	return r.SmartTag(name).Values()
}

// SmartIntTag parses every value of the smart tag name as an integer.
func (r *Record) SmartIntTag(name string) ([]int, error) {
	vals := r.SmartTextTag(name)
	if vals == nil {
		if v, ok := r.IntTag(name); ok {
			return []int{v}, nil
		}
		return nil, nil
	}
	out := make([]int, len(vals))
	for i, s := range vals {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.E(errors.Integrity, fmt.Sprintf("bam: tag %s: value %q is not an integer", name, s), err)
		}
		out[i] = n
	}
	return out, nil
}

// SmartFloatTag parses every value of the smart tag name as a float.
func (r *Record) SmartFloatTag(name string) ([]float64, error) {
	vals := r.SmartTextTag(name)
	if vals == nil {
		if v, ok := r.FloatTag(name); ok {
			return []float64{v}, nil
		}
		return nil, nil
	}
	out := make([]float64, len(vals))
	for i, s := range vals {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.E(errors.Integrity, fmt.Sprintf("bam: tag %s: value %q is not a number", name, s), err)
		}
		out[i] = f
	}
	return out, nil
}

// CountSecondaryAlignments counts the alternative hits listed in the "XA"
// tag, one per ';'-terminated entry.
func (r *Record) CountSecondaryAlignments() int {
	v, _ := r.TextTag("XA")
	return strings.Count(v, ";")
}

// CountChimericAlignments counts the supplementary hits listed in the "SA"
// and "XP" tags.
func (r *Record) CountChimericAlignments() int {
	sa, _ := r.TextTag("SA")
	xp, _ := r.TextTag("XP")
	return strings.Count(sa, ";") + strings.Count(xp, ";")
}
