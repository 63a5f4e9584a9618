// Package shortcode generates short human-shareable codes, such as group
// join codes and user codes. Codes are random; callers pass a uniqueness
// check and the generator retries a bounded number of times. The storage
// layer keeps a unique index as the final guard.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const defaultMaxAttempts = 5

type Generator struct {
	prefix      string
	length      int
	maxAttempts int
}

// NewGenerator returns a generator producing codes of the form
// prefix + length random characters from the code alphabet.
func NewGenerator(prefix string, length int) *Generator {
	return &Generator{
		prefix:      prefix,
		length:      length,
		maxAttempts: defaultMaxAttempts,
	}
}

// Generate produces a code that the taken callback reports as unused.
// It retries up to the attempt budget and fails once exhausted; collisions
// slipping through the callback surface as storage constraint violations.
func (g *Generator) Generate(taken func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := g.random()
		if err != nil {
			return "", err
		}

		exists, err := taken(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique code in %d attempts", g.maxAttempts)
}

func (g *Generator) random() (string, error) {
	buf := make([]byte, g.length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return g.prefix + string(buf), nil
}
