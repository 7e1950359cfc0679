package generator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Character pools for token bodies. Unrecognized pool names fall back to the
// auto pool.
const (
	alphaPool        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numericPool      = "0123456789"
	alphanumericPool = alphaPool + numericPool
	autoPool         = alphanumericPool + "!@#$%^&*()-_=+"
)

type tokenOptions struct {
	Length    int    `mapstructure:"length"`
	Pool      string `mapstructure:"pool"`
	Prefix    string `mapstructure:"prefix"`
	Suffix    string `mapstructure:"suffix"`
	Uppercase bool   `mapstructure:"uppercase"`
}

// TokenGenerator produces fixed-length random strings for API keys, session
// identifiers, verification codes. Characters are drawn from crypto/rand,
// each one independently and uniformly.
type TokenGenerator struct {
	cfg Config
}

func tokenDefaults() Config {
	return Config{
		"length":    128,
		"pool":      "auto",
		"prefix":    "",
		"suffix":    "",
		"uppercase": false,
	}
}

// NewToken builds a token generator with cfg merged over the defaults.
func NewToken(cfg Config) (ValueGenerator, error) {
	g := &TokenGenerator{cfg: merged(tokenDefaults(), cfg)}
	if _, err := g.options(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *TokenGenerator) options() (tokenOptions, error) {
	var opts tokenOptions
	if err := decodeOptions(g.cfg, &opts); err != nil {
		return opts, fmt.Errorf("token options: %w", err)
	}
	if opts.Length < 0 {
		return opts, fmt.Errorf("token options: negative length %d", opts.Length)
	}
	return opts, nil
}

func (g *TokenGenerator) Generate(_ Context) (string, error) {
	opts, err := g.options()
	if err != nil {
		return "", err
	}
	var body string
	switch opts.Pool {
	case "hex":
		body, err = hexBody(opts.Length)
	case "alpha":
		body, err = randomBody(opts.Length, alphaPool)
	case "numeric":
		body, err = randomBody(opts.Length, numericPool)
	case "alphanumeric":
		body, err = randomBody(opts.Length, alphanumericPool)
	default:
		body, err = randomBody(opts.Length, autoPool)
	}
	if err != nil {
		return "", err
	}
	out := opts.Prefix + body + opts.Suffix
	if opts.Uppercase {
		out = strings.ToUpper(out)
	}
	return out, nil
}

// Validate checks length only: len(prefix) + length + len(suffix). Pool
// membership is deliberately not re-verified, so tokens generated under a
// different pool setting keep validating after the pool changes.
func (g *TokenGenerator) Validate(value any, _ Context) bool {
	opts, err := g.options()
	if err != nil {
		return false
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return len(s) == len(opts.Prefix)+opts.Length+len(opts.Suffix)
}

func (g *TokenGenerator) Config() Config { return g.cfg.Clone() }

func (g *TokenGenerator) SetConfig(cfg Config) ValueGenerator {
	g.cfg = merged(g.cfg, cfg)
	return g
}

// hexBody returns n lowercase hex digits derived from crypto/rand bytes.
func hexBody(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	raw := make([]byte, (n+1)/2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(raw)[:n], nil
}

// randomBody draws n characters from pool. Bytes at or above the largest
// multiple of len(pool) are rejected and redrawn, so no pool size suffers
// modulo bias.
func randomBody(n int, pool string) (string, error) {
	if n <= 0 {
		return "", nil
	}
	limit := 256 - 256%len(pool)
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+16)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, pool[int(b)%len(pool)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
