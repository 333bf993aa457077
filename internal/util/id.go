package util

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// IDPattern is the fixed lexical form of a complaint identifier:
// CMP-YYYY-MM-DD-XXXXXX where the suffix is six uppercase alphanumerics.
var IDPattern = regexp.MustCompile(`^CMP-(\d{4})-(\d{2})-(\d{2})-[A-Z0-9]{6}$`)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDGenerator mints complaint identifiers. The random source is injected so
// tests can seed it deterministically.
type IDGenerator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewIDGenerator creates a generator over the given source. A nil source
// falls back to a time-seeded one.
func NewIDGenerator(src rand.Source) *IDGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &IDGenerator{
		rng: rand.New(src),
		now: time.Now,
	}
}

// Generate mints a new identifier dated today
func (g *IDGenerator) Generate() string {
	datePart := g.now().Format("2006-01-02")
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = idAlphabet[g.rng.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("CMP-%s-%s", datePart, suffix)
}

// ValidID reports whether the identifier matches the fixed lexical form
func ValidID(id string) bool {
	return IDPattern.MatchString(id)
}

// IDDateParts returns the year and month segments of an identifier, used to
// shard storage paths. ok is false when the ID fails to parse.
func IDDateParts(id string) (year, month string, ok bool) {
	m := IDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
