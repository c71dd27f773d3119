package auth

import "unicode/utf8"

const (
	// MinPasswordLength is the length that earns the first strength point
	MinPasswordLength = 8

	// MaxStrength is the best score PasswordStrength can return
	MaxStrength = 4
)

// Strength is a password score from 0 (nothing typed) to MaxStrength.
type Strength int

// StrengthHint is shown while the password field is still empty.
const StrengthHint = "Use at least 8 characters combining uppercase, numbers and symbols."

var strengthLabels = [...]string{"", "very weak", "basic", "solid", "excellent"}

// strengthTones feed the meter's CSS classes
var strengthTones = [...]string{"muted", "rose", "amber", "primary", "emerald"}

// PasswordStrength scores a password one point each for: at least
// MinPasswordLength characters, lower and upper case letters, a digit,
// and a character that is neither an ASCII letter nor a digit.
func PasswordStrength(password string) Strength {
	var (
		score                    Strength
		lower, upper, digit, sym bool
	)

	if utf8.RuneCountInString(password) >= MinPasswordLength {
		score++
	}

	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			sym = true
		}
	}

	if lower && upper {
		score++
	}
	if digit {
		score++
	}
	if sym {
		score++
	}
	return score
}

// Label returns the human label, empty for a zero score.
func (s Strength) Label() string {
	return strengthLabels[s.clamp()]
}

// Tone returns the color name used by the strength meter.
func (s Strength) Tone() string {
	return strengthTones[s.clamp()]
}

// Message is the line rendered under the password field.
func (s Strength) Message() string {
	if s.clamp() == 0 {
		return StrengthHint
	}
	return "Strength: " + s.Label()
}

// Bars reports, for each meter segment, whether it is lit.
func (s Strength) Bars() []bool {
	bars := make([]bool, MaxStrength)
	for i := range bars {
		bars[i] = i < int(s.clamp())
	}
	return bars
}

func (s Strength) clamp() Strength {
	if s < 0 {
		return 0
	}
	if s > MaxStrength {
		return MaxStrength
	}
	return s
}
