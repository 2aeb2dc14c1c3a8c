package util

import (
	"math/rand"
	"testing"

	"github.com/antzucaro/matchr"
)

func TestMismatches(t *testing.T) {
	tests := []struct {
		a, b  string
		limit int
		want  int
	}{
		{"ACGT", "ACGT", 4, 0},
		{"ACGT", "ACGA", 4, 1},
		{"ACGT", "TGCA", 4, 4},
		{"ACGT", "TGCA", 1, 2},
		{"ACGT", "TGCA", 0, 1},
		{"ANGT", "ANGT", 4, 1},
		{"NNNN", "NNNN", 4, 4},
		{"ACG", "ACGTTT", 3, 0},
		{"", "", 0, 0},
	}
	for _, test := range tests {
		if got := Mismatches([]byte(test.a), []byte(test.b), test.limit); got != test.want {
			t.Errorf("Mismatches(%q, %q, %d): got %d, want %d", test.a, test.b, test.limit, got, test.want)
		}
	}
}

// TestMismatchesHamming checks the unbounded count against a Hamming distance
// oracle on N-free sequences.
func TestMismatchesHamming(t *testing.T) {
	const alphabet = "ACGT"
	r := rand.New(rand.NewSource(0))
	for iter := 0; iter < 200; iter++ {
		n := r.Intn(50)
		a := make([]byte, n)
		b := make([]byte, n)
		for i := range a {
			a[i] = alphabet[r.Intn(4)]
			b[i] = alphabet[r.Intn(4)]
		}
		want, err := matchr.Hamming(string(a), string(b))
		if err != nil {
			t.Fatal(err)
		}
		if got := Mismatches(a, b, n); got != want {
			t.Errorf("%s vs %s: got %d, want %d", a, b, got, want)
		}
		if got := Matches(a, b); got != n-want {
			t.Errorf("%s vs %s: matches got %d, want %d", a, b, got, n-want)
		}
	}
}
