package domain

import "github.com/shopspring/decimal"

// Pattern classifies a numeric label for pricing purposes.
type Pattern string

const (
	PatternRepeated   Pattern = "repeated"
	PatternSequential Pattern = "sequential"
	PatternPalindrome Pattern = "palindrome"
	PatternNone       Pattern = "none"
)

var personalBasePrice = decimal.NewFromInt(25)

// numericTierPrices keys base price by digit length: short numbers are rare
// and expensive, anything of 7+ digits bottoms out at the fallback price.
var numericTierPrices = map[int]int64{
	1: 1_000_000,
	2: 100_000,
	3: 10_000,
	4: 1_000,
	5: 100,
	6: 10,
}

const numericFallbackPrice = 1

var patternMultipliers = map[Pattern]int64{
	PatternPalindrome: 20,
	PatternRepeated:   10,
	PatternSequential: 5,
	PatternNone:       1,
}

// DetectPattern classifies a digit string. Detection priority is fixed:
// repeated, then sequential, then palindrome; the first match wins. An
// all-repeated number is therefore priced as repeated even though it also
// reads as a palindrome.
func DetectPattern(digits string) Pattern {
	if len(digits) < 2 {
		return PatternNone
	}
	if isRepeated(digits) {
		return PatternRepeated
	}
	if isSequential(digits) {
		return PatternSequential
	}
	if isPalindrome(digits) {
		return PatternPalindrome
	}
	return PatternNone
}

func isRepeated(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func isSequential(s string) bool {
	asc, desc := true, true
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1]+1 {
			asc = false
		}
		if s[i] != s[i-1]-1 {
			desc = false
		}
	}
	return asc || desc
}

func isPalindrome(s string) bool {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}

// Price computes the deterministic price of a normalized label. Pure: no
// registry state is consulted.
func Price(name string, class Class) decimal.Decimal {
	switch class {
	case ClassNumeric:
		base, ok := numericTierPrices[len(name)]
		if !ok {
			base = numericFallbackPrice
		}
		multiplier := patternMultipliers[DetectPattern(name)]
		return decimal.NewFromInt(base).Mul(decimal.NewFromInt(multiplier))
	case ClassQuickAccess:
		switch len(name) {
		case 2:
			return decimal.NewFromInt(5)
		case 4:
			return decimal.NewFromInt(10)
		default:
			return decimal.NewFromInt(15)
		}
	default:
		return personalBasePrice
	}
}
