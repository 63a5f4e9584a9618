package shortcode

import (
	"strings"
	"testing"
)

func neverTaken(string) (bool, error) { return false, nil }

func TestGenerate(t *testing.T) {
	t.Run("produces codes with the configured prefix and length", func(t *testing.T) {
		gen := NewGenerator("G", 6)

		code, err := gen.Generate(neverTaken)
		if err != nil {
			t.Fatalf("expected generation to succeed, got error: %v", err)
		}
		if len(code) != 7 {
			t.Fatalf("expected code of length 7, got %q", code)
		}
		if !strings.HasPrefix(code, "G") {
			t.Fatalf("expected code to start with G, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) && r != 'G' {
				t.Fatalf("unexpected character %q in code %q", r, code)
			}
		}
	})

	t.Run("retries when the code is already taken", func(t *testing.T) {
		gen := NewGenerator("", 7)

		calls := 0
		code, err := gen.Generate(func(string) (bool, error) {
			calls++
			return calls < 3, nil
		})
		if err != nil {
			t.Fatalf("expected generation to succeed after retries, got error: %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 uniqueness checks, got %d", calls)
		}
		if code == "" {
			t.Fatal("expected non-empty code")
		}
	})

	t.Run("fails after exhausting the attempt budget", func(t *testing.T) {
		gen := NewGenerator("G", 6)

		calls := 0
		_, err := gen.Generate(func(string) (bool, error) {
			calls++
			return true, nil
		})
		if err == nil {
			t.Fatal("expected generation to fail when every code is taken")
		}
		if calls != defaultMaxAttempts {
			t.Fatalf("expected %d attempts, got %d", defaultMaxAttempts, calls)
		}
	})

	t.Run("generates distinct codes across calls", func(t *testing.T) {
		gen := NewGenerator("G", 6)

		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			code, err := gen.Generate(neverTaken)
			if err != nil {
				t.Fatalf("generation failed on iteration %d: %v", i, err)
			}
			if seen[code] {
				t.Fatalf("generated duplicate code %q", code)
			}
			seen[code] = true
		}
	})
}
