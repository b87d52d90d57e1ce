package domain

import (
	"regexp"
	"strings"
)

type Class string

const (
	ClassPersonal    Class = "personal"
	ClassNumeric     Class = "numeric"
	ClassQuickAccess Class = "quick_access"
)

// SuffixFor maps a class to its fixed registry zone.
func SuffixFor(class Class) string {
	if class == ClassNumeric {
		return "com.rich"
	}
	return "pix.global"
}

// ToClass parses a class name; "credit" is accepted as an input alias
// for numeric and stored canonically.
func ToClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal":
		return ClassPersonal, nil
	case "numeric", "credit":
		return ClassNumeric, nil
	case "quick_access", "quick":
		return ClassQuickAccess, nil
	}
	return "", ErrUnknownClass
}

// QuickAccessAlphabet excludes visually ambiguous characters (0/o, 1/l/i).
const QuickAccessAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

var (
	personalRe    = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	numericRe     = regexp.MustCompile(`^[0-9]+$`)
	quickAccessRe = regexp.MustCompile(`^[a-hj-km-np-z2-9]+$`)
)

// Label is a normalized candidate name plus its detected or requested class.
type Label struct {
	Name  string
	Class Class
}

// Normalize lowercases and trims a raw name.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DetectClass guesses the class of a normalized name: all digits means
// numeric, a short code over the restricted alphabet means quick access,
// anything else is a personal name.
func DetectClass(name string) Class {
	if numericRe.MatchString(name) {
		return ClassNumeric
	}
	if len(name) >= 2 && len(name) <= 12 && quickAccessRe.MatchString(name) {
		return ClassQuickAccess
	}
	return ClassPersonal
}

// ValidateLabel checks a normalized name against its class grammar and
// returns a human-readable reason on failure.
func ValidateLabel(name string, class Class) (string, error) {
	switch class {
	case ClassPersonal:
		if len(name) < 2 || len(name) > 63 {
			return "name must be between 2 and 63 characters", ErrInvalidFormat
		}
		if !personalRe.MatchString(name) {
			return "name must start with a letter and contain only lowercase letters, digits and hyphens", ErrInvalidFormat
		}
		if strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
			return "name must not end with a hyphen or contain consecutive hyphens", ErrInvalidFormat
		}
	case ClassNumeric:
		if len(name) < 1 || len(name) > 63 {
			return "number must be between 1 and 63 digits", ErrInvalidFormat
		}
		if !numericRe.MatchString(name) {
			return "number must contain only digits", ErrInvalidFormat
		}
	case ClassQuickAccess:
		if len(name) < 2 || len(name) > 12 {
			return "code must be between 2 and 12 characters", ErrInvalidFormat
		}
		if !quickAccessRe.MatchString(name) {
			return "code must not contain ambiguous characters (0, o, 1, l, i)", ErrInvalidFormat
		}
	default:
		return "unknown class", ErrUnknownClass
	}
	if reservedLabels[name] {
		return "this name is reserved", ErrReserved
	}
	return "", nil
}

// FQDN joins a label and its class suffix, e.g. maria.pix.global.
func FQDN(name string, class Class) string {
	return name + "." + SuffixFor(class)
}

var reservedLabels = map[string]bool{
	"admin":     true,
	"api":       true,
	"app":       true,
	"billing":   true,
	"dashboard": true,
	"dns":       true,
	"ftp":       true,
	"help":      true,
	"mail":      true,
	"ns1":       true,
	"ns2":       true,
	"paypal":    true,
	"pix":       true,
	"registry":  true,
	"rich":      true,
	"root":      true,
	"smtp":      true,
	"support":   true,
	"system":    true,
	"webmail":   true,
	"www":       true,
}

// IsReserved reports whether a normalized name is blocked for registration.
func IsReserved(name string) bool {
	return reservedLabels[name]
}
