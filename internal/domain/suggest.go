package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

const maxSuggestions = 10

// Suggest produces up to ten candidate alternatives for a taken or invalid
// name. The transforms are deterministic except for the random-digit and
// random-code variants; every candidate still satisfies its class grammar.
func Suggest(name string, class Class, rng *rand.Rand) []string {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var out []string
	seen := map[string]bool{name: true}
	add := func(candidate string) {
		if len(out) >= maxSuggestions || seen[candidate] {
			return
		}
		if _, err := ValidateLabel(candidate, class); err != nil {
			return
		}
		seen[candidate] = true
		out = append(out, candidate)
	}

	switch class {
	case ClassNumeric:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return nil
		}
		for offset := int64(1); offset <= 5; offset++ {
			add(strconv.FormatInt(n+offset, 10))
			if n-offset >= 0 {
				add(strconv.FormatInt(n-offset, 10))
			}
		}
	case ClassQuickAccess:
		for i := 0; i < maxSuggestions*2 && len(out) < maxSuggestions; i++ {
			add(randomCode(rng, len(name)))
		}
	default:
		year := time.Now().Year()
		add(fmt.Sprintf("%s%d", name, year))
		add(name + "official")
		add(name + "pro")
		add("the-" + name)
		for i := 0; i < maxSuggestions && len(out) < maxSuggestions; i++ {
			add(fmt.Sprintf("%s%d", name, rng.Intn(900)+100))
		}
	}
	return out
}

func randomCode(rng *rand.Rand, length int) string {
	if length < 2 {
		length = 2
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = QuickAccessAlphabet[rng.Intn(len(QuickAccessAlphabet))]
	}
	return string(b)
}
