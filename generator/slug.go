package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// languageTables maps language codes to transliteration pairs applied before
// diacritics are stripped. The configured dictionary merges over the table,
// so single mappings can be added or overridden per generator.
var languageTables = map[string]map[string]string{
	"en": {},
	"de": {"ä": "ae", "ö": "oe", "ü": "ue", "ß": "ss"},
}

type slugOptions struct {
	Separator  string            `mapstructure:"separator"`
	Language   string            `mapstructure:"language"`
	Dictionary map[string]string `mapstructure:"dictionary"`
	Lowercase  bool              `mapstructure:"lowercase"`
	Prefix     string            `mapstructure:"prefix"`
	Suffix     string            `mapstructure:"suffix"`
	MaxLength  *int              `mapstructure:"max_length"`
	Unique     bool              `mapstructure:"unique"`
}

// SlugGenerator derives URL-safe identifiers from the context's source text.
// Uniqueness probing goes through the context's Exists predicate; the
// generator itself never touches a datastore.
type SlugGenerator struct {
	cfg Config
}

func slugDefaults() Config {
	return Config{
		"separator":  "-",
		"language":   "en",
		"dictionary": map[string]string{"@": "at"},
		"lowercase":  true,
		"prefix":     "",
		"suffix":     "",
		"max_length": nil,
		"unique":     false,
	}
}

// NewSlug builds a slug generator with cfg merged over the defaults.
func NewSlug(cfg Config) (ValueGenerator, error) {
	g := &SlugGenerator{cfg: merged(slugDefaults(), cfg)}
	if _, err := g.options(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *SlugGenerator) options() (slugOptions, error) {
	var opts slugOptions
	if err := decodeOptions(g.cfg, &opts); err != nil {
		return opts, fmt.Errorf("slug options: %w", err)
	}
	return opts, nil
}

// Generate slugs ctx.Source. An empty source yields "" with no prefix or
// suffix. Uniqueness runs only when the unique option is on and the context
// carries both a field name and an Exists predicate.
func (g *SlugGenerator) Generate(ctx Context) (string, error) {
	opts, err := g.options()
	if err != nil {
		return "", err
	}
	if ctx.Source == "" {
		return "", nil
	}
	var slug string
	if opts.Lowercase {
		slug = normalizedSlug(ctx.Source, opts)
	} else {
		slug = casedSlug(ctx.Source, opts.Separator)
	}
	out := opts.Prefix + slug + opts.Suffix
	if opts.MaxLength != nil {
		out = truncateSlug(out, *opts.MaxLength, opts.Separator)
	}
	if !opts.Unique || ctx.Exists == nil || ctx.Field == "" {
		return out, nil
	}
	candidate := out
	for n := 2; ; n++ {
		taken, err := ctx.Exists(ctx.Field, candidate)
		if err != nil {
			return "", fmt.Errorf("slug uniqueness check for %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = out + opts.Separator + strconv.Itoa(n)
	}
}

// Validate checks the separator-and-alphanumeric character class, case
// insensitively. Letters and digits are the Unicode classes, covering
// everything the case-preserving path emits, and the check stays
// case-insensitive regardless of the lowercase option, so slugs produced
// with lowercase: false still validate.
func (g *SlugGenerator) Validate(value any, _ Context) bool {
	opts, err := g.options()
	if err != nil {
		return false
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(`(?i)^[` + regexp.QuoteMeta(opts.Separator) + `\p{L}\p{N}]+$`)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func (g *SlugGenerator) Config() Config { return g.cfg.Clone() }

func (g *SlugGenerator) SetConfig(cfg Config) ValueGenerator {
	g.cfg = merged(g.cfg, cfg)
	return g
}

// normalizedSlug is the lowercase path: substitutions run first, so
// multi-letter mappings like "ü" -> "ue" see the original character before
// diacritic stripping would reduce it to "u". Then non-alphanumeric runs
// collapse into the separator and boundary separators fall away.
func normalizedSlug(source string, opts slugOptions) string {
	s := strings.ToLower(source)
	if pairs := substitutionPairs(opts.Language, opts.Dictionary); len(pairs) > 0 {
		s = strings.NewReplacer(pairs...).Replace(s)
	}
	s = stripDiacritics(s)
	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteString(opts.Separator)
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}

// casedSlug keeps the original letter case: runs of anything that is not a
// letter or digit collapse into one separator, repeated separators collapse,
// boundary separators fall away. No substitutions, no diacritic stripping.
func casedSlug(source, separator string) string {
	var b strings.Builder
	b.Grow(len(source))
	gap := false
	for _, r := range source {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if gap && b.Len() > 0 {
				b.WriteString(separator)
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}

// substitutionPairs merges the language table with the configured dictionary
// (dictionary wins per key) into replacer pairs. Letter-keyed mappings
// substitute inline (transliterations like "ü" -> "ue"); symbol-keyed
// mappings are space-padded so the replacement slugs as its own word:
// "Hello @World" becomes "hello-at-world", not "hello-atworld".
func substitutionPairs(language string, dictionary map[string]string) []string {
	table := make(map[string]string, len(dictionary)+8)
	for from, to := range languageTables[language] {
		table[from] = to
	}
	for from, to := range dictionary {
		table[from] = to
	}
	pairs := make([]string, 0, 2*len(table))
	for from, to := range table {
		if from == "" {
			continue
		}
		if wordKey(from) {
			pairs = append(pairs, from, to)
		} else {
			pairs = append(pairs, from, " "+to+" ")
		}
	}
	return pairs
}

// wordKey reports whether s is letters and digits only.
func wordKey(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// stripDiacritics decomposes, drops combining marks, recomposes.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// truncateSlug cuts to max runes and trims any dangling separator left at
// the cut edge. Values already within max pass through untouched.
func truncateSlug(s string, max int, separator string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 0 {
		max = 0
	}
	s = string(r[:max])
	for separator != "" && strings.HasSuffix(s, separator) {
		s = strings.TrimSuffix(s, separator)
	}
	return s
}
