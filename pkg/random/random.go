// Package random provides uniform index draws backed by a cryptographically secure source.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sync"
)

// ErrInvalidArgument is returned for a non-positive pool size or a negative count.
var ErrInvalidArgument = errors.New("random: invalid argument")

// drawWidth is the number of bytes consumed per modulo draw.
const drawWidth = 4

// Sampler draws indices in [0, n).
type Sampler interface {
	// Index returns one index in [0, n).
	Index(n int) (int, error)
	// Indices returns count independent indices in [0, n).
	Indices(n, count int) ([]int, error)
}

// CryptoSampler draws indices from an io.Reader that must deliver
// cryptographically secure bytes in production (crypto/rand.Reader).
// It is safe for concurrent use; reads from the source are serialized.
type CryptoSampler struct {
	mu     sync.Mutex
	src    io.Reader
	strict bool
}

// New returns a sampler that reduces a 32-bit draw modulo n.
// The bias is at most n/2^32, which is negligible for password alphabets.
func New(src io.Reader) *CryptoSampler {
	return &CryptoSampler{src: src}
}

// NewUniform returns a sampler that uses rejection sampling
// (crypto/rand.Int) so every index is exactly equally likely.
func NewUniform(src io.Reader) *CryptoSampler {
	return &CryptoSampler{src: src, strict: true}
}

// Default returns a modulo sampler over crypto/rand.Reader.
func Default() *CryptoSampler {
	return New(rand.Reader)
}

// DefaultUniform returns a rejection sampler over crypto/rand.Reader.
func DefaultUniform() *CryptoSampler {
	return NewUniform(rand.Reader)
}

// Strict reports whether the sampler uses rejection sampling.
func (s *CryptoSampler) Strict() bool {
	return s.strict
}

// Index returns one index in [0, n).
func (s *CryptoSampler) Index(n int) (int, error) {
	if err := validate(n, 1); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.strict {
		return s.drawUniform(n)
	}

	var buf [drawWidth]byte
	if _, err := io.ReadFull(s.src, buf[:]); err != nil {
		return 0, fmt.Errorf("random: failed to read random source: %w", err)
	}
	return reduce(buf[:], n), nil
}

// Indices returns count independent indices in [0, n).
func (s *CryptoSampler) Indices(n, count int) ([]int, error) {
	if err := validate(n, count); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, count)
	if count == 0 {
		return out, nil
	}

	if s.strict {
		for i := range out {
			idx, err := s.drawUniform(n)
			if err != nil {
				return nil, err
			}
			out[i] = idx
		}
		return out, nil
	}

	// One read for the whole batch, mirroring a single getRandomValues call.
	buf := make([]byte, count*drawWidth)
	if _, err := io.ReadFull(s.src, buf); err != nil {
		return nil, fmt.Errorf("random: failed to read random source: %w", err)
	}
	for i := range out {
		out[i] = reduce(buf[i*drawWidth:(i+1)*drawWidth], n)
	}
	return out, nil
}

func (s *CryptoSampler) drawUniform(n int) (int, error) {
	idx, err := rand.Int(s.src, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random: failed to generate random number: %w", err)
	}
	return int(idx.Int64()), nil
}

func reduce(b []byte, n int) int {
	return int(binary.LittleEndian.Uint32(b) % uint32(n))
}

func validate(n, count int) error {
	if n <= 0 {
		return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidArgument, n)
	}
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: pool size %d exceeds draw width", ErrInvalidArgument, n)
	}
	if count < 0 {
		return fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidArgument, count)
	}
	return nil
}
