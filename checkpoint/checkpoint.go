// Package checkpoint decorates errors with the file and line where they passed
// through, which adds up to something similar to a stacktrace when the same
// error is wrapped several times on its way up.
// A sentinel given to Wrap can be checked by errors.Is and retrieved by errors.As,
// while the original cause stays reachable through errors.Unwrap.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err by a new checkpoint carrying the caller location.
// It returns nil if err is nil.
func From(err error) error {
	// io.EOF must be returned as io.EOF directly
	// https://github.com/golang/go/issues/39155
	if err == nil || err == io.EOF {
		return err
	}

	return newCheckpoint(nil, err)
}

// Wrap adds a checkpoint for prev and tags it with err, usually a predefined
// sentinel:
//  var ErrIO = errors.New("could not read the image")
//
//  func readSector() error {
//  	_, err := r.ReadAt(buf, off)
//  	return checkpoint.Wrap(err, ErrIO)
//  }
// The result matches errors.Is(result, ErrIO) as well as errors.Is for
// whatever prev matches.
// Returns nil if prev is nil.
func Wrap(prev, err error) error {
	if prev == nil || prev == io.EOF {
		return prev
	}

	return newCheckpoint(err, prev)
}

// Wrapf is like Wrap but also formats a detail message that is shown
// between the sentinel and the cause.
func Wrapf(prev, err error, format string, args ...interface{}) error {
	if prev == nil || prev == io.EOF {
		return prev
	}

	c := newCheckpoint(err, prev)
	c.detail = fmt.Sprintf(format, args...)
	return c
}

func newCheckpoint(err, prev error) *checkpoint {
	// Skip newCheckpoint and the exported function.
	_, file, line, ok := runtime.Caller(2)

	return &checkpoint{
		err:      err,
		prev:     prev,
		detail:   "",
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type checkpoint struct {
	err    error
	prev   error
	detail string

	callerOk bool
	file     string
	line     int
}

func (e *checkpoint) location() string {
	if !e.callerOk {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", e.file, e.line)
}

func (e *checkpoint) Error() string {
	var b strings.Builder
	b.WriteString("File: " + e.location())

	if e.err != nil {
		b.WriteString("\n\t" + e.err.Error())
	}
	if e.detail != "" {
		b.WriteString("\n\t" + e.detail)
	}

	// A cause that is no checkpoint gets its own unknown location block.
	prev := e.prev.Error()
	if _, ok := e.prev.(*checkpoint); !ok {
		prev = "File: unknown\n\t" + strings.ReplaceAll(prev, "\n", "\n\t")
	}

	b.WriteString("\n" + prev)
	return b.String()
}

func (e *checkpoint) Unwrap() error {
	return e.prev
}

func (e *checkpoint) Is(target error) bool {
	if e.err == nil {
		return false
	}
	return errors.Is(e.err, target)
}

func (e *checkpoint) As(target interface{}) bool {
	if e.err == nil {
		return false
	}
	return errors.As(e.err, target)
}
