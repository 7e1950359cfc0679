package generator

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

// Canonical hyphenated form. Validation accepts only this grammar, even when
// the generator renders hex or binary output.
var canonicalUUIDRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type uuidOptions struct {
	Version   string `mapstructure:"version"`
	Format    string `mapstructure:"format"`
	Prefix    string `mapstructure:"prefix"`
	Suffix    string `mapstructure:"suffix"`
	Namespace string `mapstructure:"namespace"`
	Name      string `mapstructure:"name"`
}

// UUIDGenerator produces UUIDs in several versions and renderings. The
// default "ordered" version is UUIDv7, time-sorted for index-friendly keys.
type UUIDGenerator struct {
	cfg Config
}

func uuidDefaults() Config {
	return Config{
		"version":   "ordered",
		"format":    "string",
		"prefix":    "",
		"suffix":    "",
		"namespace": nil,
		"name":      nil,
	}
}

// NewUUID builds a UUID generator with cfg merged over the defaults.
func NewUUID(cfg Config) (ValueGenerator, error) {
	g := &UUIDGenerator{cfg: merged(uuidDefaults(), cfg)}
	if _, err := g.options(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *UUIDGenerator) options() (uuidOptions, error) {
	var opts uuidOptions
	if err := decodeOptions(g.cfg, &opts); err != nil {
		return opts, fmt.Errorf("uuid options: %w", err)
	}
	return opts, nil
}

func (g *UUIDGenerator) Generate(_ Context) (string, error) {
	opts, err := g.options()
	if err != nil {
		return "", err
	}
	u, err := newUUID(opts)
	if err != nil {
		return "", err
	}
	return opts.Prefix + renderUUID(u, opts.Format) + opts.Suffix, nil
}

// Validate strips a configured prefix/suffix present at the boundaries and
// checks the remainder against the canonical 8-4-4-4-12 grammar. Hex and
// binary renderings do not validate; only the canonical string form does.
func (g *UUIDGenerator) Validate(value any, _ Context) bool {
	opts, err := g.options()
	if err != nil {
		return false
	}
	if value == nil {
		return false
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		return false
	}
	s = strings.TrimPrefix(s, opts.Prefix)
	s = strings.TrimSuffix(s, opts.Suffix)
	return canonicalUUIDRe.MatchString(s)
}

func (g *UUIDGenerator) Config() Config { return g.cfg.Clone() }

func (g *UUIDGenerator) SetConfig(cfg Config) ValueGenerator {
	g.cfg = merged(g.cfg, cfg)
	return g
}

func newUUID(opts uuidOptions) (uuid.UUID, error) {
	switch opts.Version {
	case "v1":
		return uuid.NewUUID()
	case "v4":
		return uuid.NewRandom()
	case "v3", "v5":
		ns, err := namespaceUUID(opts.Namespace)
		if err != nil {
			return uuid.Nil, err
		}
		name := opts.Name
		if name == "" {
			name = faker.UUIDDigit()
		}
		if opts.Version == "v3" {
			return uuid.NewMD5(ns, []byte(name)), nil
		}
		return uuid.NewSHA1(ns, []byte(name)), nil
	default:
		// "ordered" and anything unrecognized.
		return uuid.NewV7()
	}
}

func namespaceUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.NameSpaceDNS, nil
	}
	ns, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse uuid namespace %q: %w", s, err)
	}
	return ns, nil
}

func renderUUID(u uuid.UUID, format string) string {
	switch format {
	case "hex":
		return hex.EncodeToString(u[:])
	case "binary":
		return string(u[:])
	default:
		// "string" and anything unrecognized.
		return u.String()
	}
}
