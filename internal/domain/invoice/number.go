package invoice

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultNumberPrefix prefixes every generated invoice number.
const DefaultNumberPrefix = "INV"

// NumberGenerator produces display numbers of the form <prefix>-<unix millis>-<0..999>.
// The random suffix only has three digits, so numbers can collide; the invoice id is
// the real key.
type NumberGenerator struct {
	prefix string
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewNumberGenerator builds a generator. A nil now uses time.Now and a nil rnd is
// seeded from the clock.
func NewNumberGenerator(prefix string, now func() time.Time, rnd *rand.Rand) *NumberGenerator {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		seed := uint64(now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &NumberGenerator{prefix: prefix, now: now, rnd: rnd}
}

// Next returns a new invoice number.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	suffix := g.rnd.IntN(1000)
	g.mu.Unlock()
	return fmt.Sprintf("%s-%d-%d", g.prefix, g.now().UnixMilli(), suffix)
}
