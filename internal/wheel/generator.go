package wheel

import "bytes"

const DefaultMaxAttempts = 500

type Generated struct {
	Token    string
	Attempts int
	Fallback bool
}

type Generator struct {
	validator   *Validator
	maxAttempts int
}

func NewGenerator(v *Validator, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{validator: v, maxAttempts: maxAttempts}
}

func (g *Generator) Validator() *Validator {
	return g.validator
}

// Generate runs a bounded generate-validate loop and falls back to the
// deterministic minimal token once the attempts are exhausted.
func (g *Generator) Generate(rng RNG) Generated {
	f := g.validator.format
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		token := f.Prefix + string(g.candidate(rng))
		if g.validator.Validate(token).Valid {
			return Generated{Token: token, Attempts: attempt}
		}
	}
	return Generated{Token: f.Fallback(), Attempts: g.maxAttempts, Fallback: true}
}

func (g *Generator) candidate(rng RNG) []byte {
	f := g.validator.format
	body := make([]byte, f.Length)
	for i := range body {
		body[i] = f.Alphabet[rng.Intn(len(f.Alphabet))]
	}

	required := []byte(f.Required)
	start := bytes.Index(body, required)
	if start < 0 {
		start = rng.Intn(f.Length - len(required) + 1)
		copy(body[start:], required)
	}
	end := start + len(required)

	digits := f.digits()
	have := countDigits(string(body))
	for tries := 0; have < f.MinDigits && tries < 4*f.Length; tries++ {
		pos := rng.Intn(f.Length)
		if (pos >= start && pos < end) || isDigit(body[pos]) {
			continue
		}
		body[pos] = digits[rng.Intn(len(digits))]
		have++
	}
	return body
}
