package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses stars", "**Bold** and ***more***", "*Bold* and *more*"},
		{"collapses dots", "wait... what", "wait. what"},
		{"space after period before capital", "one.Two", "one. Two"},
		{"collapsed dots then capital", "end...Next", "end. Next"},
		{"lowercase after period untouched", "example.com", "example.com"},
		{"drops disallowed characters", "cost $5 & 10% #tag", "cost 5  10 tag"},
		{"keeps allowed punctuation", `a, b; c: d! e? (f) "g" [1] - h*`, `a, b; c: d! e? (f) "g" [1] - h*`},
		{"keeps underscores", "snake_case", "snake_case"},
		{"keeps newlines", "1.\n*Title*\n- item", "1.\n*Title*\n- item"},
		{"removal exposes a new run", "*~*", "*"},
		{"removal exposes dot before capital", ".~A", ". A"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func FuzzSanitize(f *testing.F) {
	for _, seed := range []string{
		"**x**...Y",
		"*~*~*",
		"..~..~Next",
		"Intro [1] and [2].\n- point one",
		"émigré café ✓ done.Then",
		"a.~.B",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in string) {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.False(t, disallowedRun.MatchString(once), "disallowed characters left in %q", once)
	})
}
