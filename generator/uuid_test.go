package generator

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDOrderedDefault(t *testing.T) {
	g, err := NewUUID(nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	u, err := uuid.Parse(out)
	if err != nil {
		t.Fatalf("expected canonical uuid, got %q: %v", out, err)
	}
	if int(u.Version()) != 7 {
		t.Fatalf("expected time-ordered v7, got version %d", u.Version())
	}
	if out != strings.ToLower(out) || len(out) != 36 {
		t.Fatalf("expected lowercase hyphenated form, got %q", out)
	}
	if !g.Validate(out, Context{}) {
		t.Fatalf("expected generated uuid to validate: %q", out)
	}
}

func TestUUIDVersions(t *testing.T) {
	versions := []struct {
		version string
		want    int
	}{
		{"ordered", 7},
		{"v1", 1},
		{"v4", 4},
		{"v3", 3},
		{"v5", 5},
		{"time-sorted-please", 7},
	}
	for _, v := range versions {
		g, err := NewUUID(Config{"version": v.version})
		if err != nil {
			t.Fatal(err)
		}
		out, err := g.Generate(Context{})
		if err != nil {
			t.Fatal(err)
		}
		u, err := uuid.Parse(out)
		if err != nil {
			t.Fatalf("version %s: %v", v.version, err)
		}
		if int(u.Version()) != v.want {
			t.Fatalf("version %s: got %d, want %d", v.version, u.Version(), v.want)
		}
	}
}

func TestUUIDNameBased(t *testing.T) {
	g, err := NewUUID(Config{"version": "v5", "name": "example.org"})
	if err != nil {
		t.Fatal(err)
	}
	first, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected deterministic v5 for a fixed name, got %q and %q", first, second)
	}
	if want := uuid.NewSHA1(uuid.NameSpaceDNS, []byte("example.org")).String(); first != want {
		t.Fatalf("expected DNS-namespace v5 %q, got %q", want, first)
	}

	md5g, err := NewUUID(Config{"version": "v3", "name": "example.org", "namespace": uuid.NameSpaceURL.String()})
	if err != nil {
		t.Fatal(err)
	}
	out, err := md5g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if want := uuid.NewMD5(uuid.NameSpaceURL, []byte("example.org")).String(); out != want {
		t.Fatalf("expected URL-namespace v3 %q, got %q", want, out)
	}
}

func TestUUIDNameBasedRandomDefaultName(t *testing.T) {
	g, err := NewUUID(Config{"version": "v5"})
	if err != nil {
		t.Fatal(err)
	}
	first, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("expected random default names to differ, got %q twice", first)
	}
}

func TestUUIDFormats(t *testing.T) {
	hexg, err := NewUUID(Config{"format": "hex"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := hexg.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 32 || strings.Contains(out, "-") || out != strings.ToLower(out) {
		t.Fatalf("expected 32 lowercase hex digits, got %q", out)
	}

	bing, err := NewUUID(Config{"format": "binary"})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := bing.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 16 {
		t.Fatalf("expected 16 raw bytes, got %d", len(raw))
	}

	odd, err := NewUUID(Config{"format": "base58"})
	if err != nil {
		t.Fatal(err)
	}
	s, err := odd.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 36 || strings.Count(s, "-") != 4 {
		t.Fatalf("expected canonical fallback for unrecognized format, got %q", s)
	}
}

func TestUUIDPrefixSuffix(t *testing.T) {
	g, err := NewUUID(Config{"prefix": "id-", "suffix": ".v1"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "id-") || !strings.HasSuffix(out, ".v1") {
		t.Fatalf("expected prefix and suffix, got %q", out)
	}
	if !g.Validate(out, Context{}) {
		t.Fatalf("expected prefixed uuid to validate: %q", out)
	}
	if g.Validate("id-not-a-uuid.v1", Context{}) {
		t.Fatal("expected junk between prefix and suffix to fail")
	}
}

func TestUUIDValidateCanonicalOnly(t *testing.T) {
	// Validation always checks the hyphenated canonical grammar, even when
	// the generator is set to render hex or binary.
	g, err := NewUUID(Config{"format": "hex"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate(Context{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Validate(out, Context{}) {
		t.Fatalf("expected hex rendering to fail canonical validation: %q", out)
	}
	if !g.Validate("6ba7b810-9dad-11d1-80b4-00c04fd430c8", Context{}) {
		t.Fatal("expected canonical form to validate")
	}
	if !g.Validate("6BA7B810-9DAD-11D1-80B4-00C04FD430C8", Context{}) {
		t.Fatal("expected uppercase hex digits to validate")
	}
}

type stringerValue struct{ s string }

func (v stringerValue) String() string { return v.s }

func TestUUIDValidateInput(t *testing.T) {
	g, err := NewUUID(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Validate(stringerValue{"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}, Context{}) {
		t.Fatal("expected stringer value to validate")
	}
	if g.Validate(nil, Context{}) || g.Validate(42, Context{}) {
		t.Fatal("expected non-string input to fail")
	}
	if g.Validate("6ba7b810-9dad-11d1-80b4-00c04fd430c", Context{}) {
		t.Fatal("expected truncated uuid to fail")
	}
}

func TestUUIDBadNamespace(t *testing.T) {
	g, err := NewUUID(Config{"version": "v5", "namespace": "not-a-uuid"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(Context{}); err == nil {
		t.Fatal("expected error for unparseable namespace")
	}
}
