package document

import (
	"errors"
	"math/rand"
	"testing"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name    string
		changes []ChangeRange
		want    ChangeRange
	}{
		{"empty", nil, Unchanged},
		{"single", []ChangeRange{{4, 5, 1}}, ChangeRange{4, 5, 1}},
		{
			"inserts left to right",
			[]ChangeRange{{1, 1, 1}, {3, 3, 1}},
			ChangeRange{1, 2, 3},
		},
		{
			"insert before a delete",
			[]ChangeRange{{5, 11, 0}, {0, 0, 1}},
			ChangeRange{0, 11, 6},
		},
		{
			"replace before a delete",
			[]ChangeRange{{5, 11, 0}, {0, 1, 3}},
			ChangeRange{0, 11, 7},
		},
		{
			"edit past the composite",
			[]ChangeRange{{2, 4, 3}, {10, 12, 0}},
			ChangeRange{2, 11, 8},
		},
		{
			"typing a word",
			[]ChangeRange{{0, 0, 1}, {1, 1, 1}, {2, 2, 1}},
			ChangeRange{0, 0, 3},
		},
		{
			"type then backspace",
			[]ChangeRange{{3, 3, 1}, {3, 4, 0}},
			ChangeRange{3, 3, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.changes...)
			if got != tt.want {
				t.Errorf("Compose(%v) = %v, want %v", tt.changes, got, tt.want)
			}
		})
	}
}

func TestComposeReproducesText(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const alphabet = "abc\nxyz "

	for round := 0; round < 200; round++ {
		base := randomText(rng, alphabet, rng.Intn(30))
		text := base
		var changes []ChangeRange
		for i := 0; i < 1+rng.Intn(6); i++ {
			start := rng.Intn(len(text) + 1)
			end := start + rng.Intn(len(text)-start+1)
			insert := randomText(rng, alphabet, rng.Intn(5))
			text = text[:start] + insert + text[end:]
			changes = append(changes, ChangeRange{Start: start, End: end, NewLength: len(insert)})
		}

		c := Compose(changes...)
		if c.End > len(base) || c.NewEnd() > len(text) {
			t.Fatalf("round %d: Compose(%v) = %v out of bounds (base %d, final %d)", round, changes, c, len(base), len(text))
		}
		got, err := c.Apply(base, text[c.Start:c.NewEnd()])
		if err != nil {
			t.Fatalf("round %d: Apply: %v", round, err)
		}
		if got != text {
			t.Fatalf("round %d: Compose(%v) = %v rebuilds %q, want %q", round, changes, c, got, text)
		}
	}
}

func TestNewChangeRange(t *testing.T) {
	if _, err := NewChangeRange(2, 1, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewChangeRange(2, 1, 0) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewChangeRange(0, 0, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewChangeRange(0, 0, -1) error = %v, want ErrInvalidArgument", err)
	}
	c, err := NewChangeRange(4, 5, 3)
	if err != nil {
		t.Fatalf("NewChangeRange: %v", err)
	}
	if c.OldLength() != 1 || c.NewEnd() != 7 || c.Delta() != 2 {
		t.Errorf("got OldLength=%d NewEnd=%d Delta=%d, want 1, 7, 2", c.OldLength(), c.NewEnd(), c.Delta())
	}
}

func TestUnchanged(t *testing.T) {
	if !Unchanged.IsUnchanged() {
		t.Error("Unchanged.IsUnchanged() = false")
	}
	if (ChangeRange{3, 3, 1}).IsUnchanged() {
		t.Error("insertion reported as unchanged")
	}
	if Unchanged.String() != "unchanged" {
		t.Errorf("Unchanged.String() = %q", Unchanged.String())
	}
}

func randomText(rng *rand.Rand, alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}
