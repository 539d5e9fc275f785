// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package fasta holds FASTA reference sequences in memory and serves windows
// of them, for example as the reference side of an alignment.
//
// A FASTA file is a list of named sequences that may be split across lines:
//
//   >chr7 optional description
//   ACGTAC
//   GAGGAC
//   >chr8
//   ACGT
//
// The sequence name is the text after '>' up to the first space.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/bamrec/biosimd"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

const maxLineSize = 1 << 28

// Fasta is a set of named sequences.
type Fasta interface {
	// Get returns bases [start, end) of the named sequence. Get is
	// thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the named sequence.
	Len(seqName string) (uint64, error)

	// SeqNames lists the sequence names in file order.
	SeqNames() []string
}

// Encoding selects how bases are stored.
type Encoding int

const (
	// Raw keeps the bases exactly as they appear in the file.
	Raw Encoding = iota
	// CleanASCII upper-cases acgt and turns every other byte into 'N', so
	// that windows are safe to pack into a record.
	CleanASCII
)

// Opts configures New.
type Opts struct {
	Enc Encoding
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all of r into memory.
func New(r io.Reader, opts Opts) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	var (
		name string
		seq  []byte
		seen bool
	)
	flush := func() error {
		if !seen {
			if len(seq) > 0 {
				return errors.New("malformed FASTA: bases before the first header")
			}
			return nil
		}
		if _, dup := f.seqs[name]; dup {
			return errors.Errorf("malformed FASTA: duplicate sequence %s", name)
		}
		if opts.Enc == CleanASCII {
			biosimd.CleanASCIISeqInplace(seq)
		}
		f.seqs[name] = gunsafe.BytesToString(seq)
		f.seqNames = append(f.seqNames, name)
		seq = nil
		return nil
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			seq = append(seq, line...)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		name = strings.SplitN(string(line[1:]), " ", 2)[0]
		if name == "" {
			return nil, errors.New("malformed FASTA: empty sequence name")
		}
		seen = true
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.Errorf("start must be less than end: %d, %d", start, end)
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
