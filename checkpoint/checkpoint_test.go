package checkpoint

import (
	"errors"
	"io"
	"strings"
	"testing"
)

var (
	errSentinel = errors.New("sentinel")
	errCause    = errors.New("cause")
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantNil bool
		wantIs  error
	}{
		{
			name:    "nil stays nil",
			err:     nil,
			wantNil: true,
		},
		{
			name:   "io.EOF is returned directly",
			err:    io.EOF,
			wantIs: io.EOF,
		},
		{
			name:   "cause is reachable",
			err:    errCause,
			wantIs: errCause,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			if (got == nil) != tt.wantNil {
				t.Fatalf("From() = %v, wantNil %v", got, tt.wantNil)
			}
			if tt.wantIs != nil && !errors.Is(got, tt.wantIs) {
				t.Errorf("From() = %v, want errors.Is %v", got, tt.wantIs)
			}
		})
	}

	if From(io.EOF) != io.EOF {
		t.Errorf("From(io.EOF) must not be decorated")
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(errCause, errSentinel)
	if !errors.Is(err, errSentinel) {
		t.Errorf("Wrap() = %v, want errors.Is sentinel", err)
	}
	if !errors.Is(err, errCause) {
		t.Errorf("Wrap() = %v, want errors.Is cause", err)
	}
	if Wrap(nil, errSentinel) != nil {
		t.Errorf("Wrap(nil, ...) must be nil")
	}
	if Wrap(io.EOF, errSentinel) != io.EOF {
		t.Errorf("Wrap(io.EOF, ...) must be io.EOF")
	}

	// Nested checkpoints keep every sentinel.
	outer := Wrap(err, io.ErrUnexpectedEOF)
	if !errors.Is(outer, errSentinel) || !errors.Is(outer, io.ErrUnexpectedEOF) {
		t.Errorf("nested Wrap() lost a sentinel: %v", outer)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errCause, errSentinel, "cluster %d", 7)
	if !errors.Is(err, errSentinel) {
		t.Errorf("Wrapf() = %v, want errors.Is sentinel", err)
	}

	msg := err.Error()
	for _, want := range []string{"checkpoint_test.go", "sentinel", "cluster 7", "cause"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Wrapf().Error() = %q, missing %q", msg, want)
		}
	}
}
