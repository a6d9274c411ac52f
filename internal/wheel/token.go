package wheel

import (
	"fmt"
	"strings"

	"zela-wheel-backend/internal/models"
)

const (
	ReasonNotString       = "not-a-string"
	ReasonMissingPrefix   = "missing-prefix"
	ReasonWrongLength     = "wrong-length"
	ReasonInvalidChars    = "invalid-chars"
	ReasonTooFewDigits    = "too-few-digits"
	ReasonMissingSequence = "missing-required-sequence"
)

type TokenFormat struct {
	Prefix    string `yaml:"prefix"`
	Length    int    `yaml:"length"`
	Alphabet  string `yaml:"alphabet"`
	Required  string `yaml:"required"`
	MinDigits int    `yaml:"min_digits"`
}

func CanonicalTokenFormat() TokenFormat {
	return TokenFormat{
		Prefix:    "ZELA-",
		Length:    20,
		Alphabet:  "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
		Required:  "9F0",
		MinDigits: 3,
	}
}

func (f TokenFormat) digits() []byte {
	var out []byte
	for i := 0; i < len(f.Alphabet); i++ {
		if isDigit(f.Alphabet[i]) {
			out = append(out, f.Alphabet[i])
		}
	}
	return out
}

// fillChar pads the fallback body.
func (f TokenFormat) fillChar() byte {
	if strings.IndexByte(f.Alphabet, '0') >= 0 {
		return '0'
	}
	if d := f.digits(); len(d) > 0 {
		return d[0]
	}
	return f.Alphabet[0]
}

// Fallback is the deterministic minimal token: prefix, required sequence, padding.
func (f TokenFormat) Fallback() string {
	pad := strings.Repeat(string(f.fillChar()), f.Length-len(f.Required))
	return f.Prefix + f.Required + pad
}

// Validate rejects formats for which no token, or no fallback, could be valid.
func (f TokenFormat) Validate() error {
	if f.Length < 1 {
		return fmt.Errorf("%w: length must be positive", models.ErrInvalidTokenFormat)
	}
	if f.Alphabet == "" {
		return fmt.Errorf("%w: empty alphabet", models.ErrInvalidTokenFormat)
	}
	if len(f.Required) > f.Length {
		return fmt.Errorf("%w: required sequence %q longer than body", models.ErrInvalidTokenFormat, f.Required)
	}
	if !f.inAlphabet(f.Required) {
		return fmt.Errorf("%w: required sequence %q outside alphabet", models.ErrInvalidTokenFormat, f.Required)
	}
	if f.MinDigits < 0 || f.MinDigits > f.Length {
		return fmt.Errorf("%w: min digits %d", models.ErrInvalidTokenFormat, f.MinDigits)
	}
	if f.MinDigits > 0 && len(f.digits()) == 0 {
		return fmt.Errorf("%w: alphabet has no digits", models.ErrInvalidTokenFormat)
	}
	if v := f.check(f.Fallback()); !v.Valid {
		return fmt.Errorf("%w: fallback token fails: %s", models.ErrInvalidTokenFormat, v.Reason)
	}
	return nil
}

func (f TokenFormat) inAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(f.Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

func (f TokenFormat) check(token string) models.TokenValidation {
	if !strings.HasPrefix(token, f.Prefix) {
		return models.TokenValidation{Reason: ReasonMissingPrefix}
	}
	body := token[len(f.Prefix):]
	if len(body) != f.Length {
		return models.TokenValidation{Reason: fmt.Sprintf("%s (need %d)", ReasonWrongLength, f.Length)}
	}
	if !f.inAlphabet(body) {
		return models.TokenValidation{Reason: ReasonInvalidChars}
	}
	if countDigits(body) < f.MinDigits {
		return models.TokenValidation{Reason: fmt.Sprintf("%s (need %d)", ReasonTooFewDigits, f.MinDigits)}
	}
	if !strings.Contains(body, f.Required) {
		return models.TokenValidation{Reason: ReasonMissingSequence}
	}
	return models.TokenValidation{Valid: true}
}

// Validator checks the structural contract of prize tokens. It holds no mutable state.
type Validator struct {
	format TokenFormat
}

func NewValidator(f TokenFormat) (*Validator, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &Validator{format: f}, nil
}

func (v *Validator) Format() TokenFormat {
	return v.format
}

func (v *Validator) Validate(token string) models.TokenValidation {
	return v.format.check(token)
}

// ValidateValue accepts decoded input of any type, e.g. from a JSON body.
func (v *Validator) ValidateValue(value any) models.TokenValidation {
	s, ok := value.(string)
	if !ok {
		return models.TokenValidation{Reason: ReasonNotString}
	}
	return v.Validate(s)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			n++
		}
	}
	return n
}
