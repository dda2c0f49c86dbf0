// Package secret holds credentials that must never reach a log line or a file.
//
// A [Secret] owns a byte buffer. Callers get at the plaintext only through
// [Secret.Use], which hands out a scratch copy and zeroes it again on every
// exit path, including panics. [Secret.Destroy] zeroes the owned buffer.
package secret

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

const redacted = "[REDACTED]"

// ErrDestroyed is returned by Use after Destroy has been called.
var ErrDestroyed = errors.New("secret has been destroyed")

// Secret is a credential held in memory only for as long as it is needed.
type Secret struct {
	mu  sync.Mutex
	buf []byte
}

// New takes a copy of b and zeroes b.
func New(b []byte) *Secret {
	s := &Secret{buf: make([]byte, len(b))}
	copy(s.buf, b)
	clear(b)
	return s
}

// ReadLine reads a single line from r into a new Secret. The trailing
// newline (and carriage return) are not part of the secret.
//
// r is read one byte at a time into a buffer owned here, so no reader-side
// buffer is left holding the plaintext and nothing past the newline is
// consumed.
func ReadLine(r io.Reader) (*Secret, error) {
	var one [1]byte
	buf := make([]byte, 0, 256)
	defer func() {
		clear(one[:])
		clear(buf[:cap(buf)])
	}()

	for {
		n, err := r.Read(one[:])
		if n == 1 {
			if one[0] == '\n' {
				break
			}
			buf = appendScrubbed(buf, one[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
	}

	if n := len(buf); n > 0 && buf[n-1] == '\r' {
		buf[n-1] = 0
		buf = buf[:n-1]
	}
	if len(buf) == 0 {
		return nil, errors.New("secret is empty")
	}
	return New(buf), nil
}

// appendScrubbed appends c to buf. When buf has to grow, the old backing
// array is zeroed before it is dropped.
func appendScrubbed(buf []byte, c byte) []byte {
	if len(buf) < cap(buf) {
		return append(buf, c)
	}
	grown := make([]byte, len(buf), 2*cap(buf)+1)
	copy(grown, buf)
	clear(buf)
	return append(grown, c)
}

// Use passes a scratch copy of the plaintext to fn. The copy is zeroed when
// fn returns or panics and must not be retained.
func (s *Secret) Use(fn func(plain []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return ErrDestroyed
	}

	plain := make([]byte, len(s.buf))
	copy(plain, s.buf)
	defer clear(plain)

	return fn(plain)
}

// Destroy zeroes the owned buffer. It is safe to call more than once.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.buf)
	s.buf = nil
}

// Len reports the plaintext length, or 0 once destroyed.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// String implements fmt.Stringer without exposing the plaintext.
func (s *Secret) String() string { return redacted }

// GoString implements fmt.GoStringer without exposing the plaintext.
func (s *Secret) GoString() string { return redacted }

// Format keeps every fmt verb, including %x and %v, from printing the buffer.
func (s *Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON keeps the plaintext out of JSON output.
func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
