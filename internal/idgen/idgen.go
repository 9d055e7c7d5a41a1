// Package idgen provides unique task identifiers.
package idgen

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Generator interface {
	NewID() string
}

// UUID generates random (v4) UUIDs. If the random source fails it falls
// back to a timestamp plus a random fraction.
type UUID struct {
	random func() (uuid.UUID, error)
	now    func() time.Time
}

func NewUUID() *UUID {
	return &UUID{random: uuid.NewRandom, now: time.Now}
}

func (g *UUID) NewID() string {
	random := g.random
	if random == nil {
		random = uuid.NewRandom
	}
	id, err := random()
	if err == nil {
		return id.String()
	}
	now := g.now
	if now == nil {
		now = time.Now
	}
	return Fallback(now())
}

// Fallback formats t (ms) with a random fractional suffix, e.g. "1712345678901.4821".
func Fallback(t time.Time) string {
	frac := strconv.FormatFloat(rand.Float64(), 'f', -1, 64)
	if len(frac) > 1 && frac[0] == '0' {
		frac = frac[1:]
	} else {
		frac = ""
	}
	return fmt.Sprintf("%d%s", t.UnixMilli(), frac)
}

const maxAttempts = 8

// Unique asks gen for an id that taken rejects. A generator that keeps
// repeating itself is abandoned after maxAttempts in favour of Fallback.
func Unique(gen Generator, taken func(string) bool) string {
	for i := 0; i < maxAttempts; i++ {
		if id := gen.NewID(); !taken(id) {
			return id
		}
	}
	for {
		if id := Fallback(time.Now()); !taken(id) {
			return id
		}
	}
}

// Sequence hands out Prefix+"1", Prefix+"2", ... Useful where ids must be predictable.
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s%d", s.Prefix, s.n.Add(1))
}
