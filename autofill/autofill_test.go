package autofill

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mmrzaf/modelkit/generator"
)

type article struct {
	ID     uint
	Title  string
	Slug   string `gen:"slug,source=Title,unique"`
	APIKey string `gen:"token,length=6,pool=numeric"`
}

type draft struct {
	ID    uint
	Title string
	Slug  *string `gen:"slug,source=Title"`
}

type stampedRecord struct {
	ID   uint
	Code string `gen:"token"`
}

func (stampedRecord) GeneratorFor(kind, field string) (generator.Spec, bool) {
	if kind == "token" && field == "Code" {
		return generator.UseFactory(generator.NewToken, generator.Config{
			"length": 4,
			"pool":   "numeric",
		}), true
	}
	return generator.Spec{}, false
}

type untypedRecord struct {
	ID    uint
	Count int `gen:"token"`
}

type unknownKindRecord struct {
	ID   uint
	Code string `gen:"nope"`
}

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func openFillDB(t *testing.T, p *Plugin, models ...any) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autofill.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatal(err)
	}
	if err := db.Use(p); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCreateFillsEmptyFields(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &article{})

	a := article{Title: "My Great Post"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}
	if a.Slug != "my-great-post" {
		t.Fatalf("slug = %q", a.Slug)
	}
	if !sixDigits.MatchString(a.APIKey) {
		t.Fatalf("api key = %q", a.APIKey)
	}

	var stored article
	if err := db.First(&stored, a.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Slug != a.Slug || stored.APIKey != a.APIKey {
		t.Fatalf("stored %+v does not match filled %+v", stored, a)
	}
}

func TestCreateKeepsPresetValues(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &article{})

	a := article{Title: "My Great Post", Slug: "hand-picked", APIKey: "123456"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}
	if a.Slug != "hand-picked" {
		t.Fatalf("preset slug overwritten: %q", a.Slug)
	}
	if a.APIKey != "123456" {
		t.Fatalf("preset api key overwritten: %q", a.APIKey)
	}
}

func TestSlugUniquenessAcrossRecords(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &article{})

	first := article{Title: "Launch Day"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}
	second := article{Title: "Launch Day"}
	if err := db.Create(&second).Error; err != nil {
		t.Fatal(err)
	}

	if first.Slug != "launch-day" {
		t.Fatalf("first slug = %q", first.Slug)
	}
	if second.Slug != "launch-day-2" {
		t.Fatalf("second slug = %q", second.Slug)
	}
}

func TestUpdateRefillsClearedFieldExcludingSelf(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &article{})

	a := article{Title: "Launch Day"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}

	// The row's own stored slug must not count as a collision.
	a.Slug = ""
	if err := db.Save(&a).Error; err != nil {
		t.Fatal(err)
	}
	if a.Slug != "launch-day" {
		t.Fatalf("refilled slug = %q", a.Slug)
	}
}

func TestPartialUpdateLeavesStoredValues(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &article{})

	a := article{Title: "Launch Day"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&a).Updates(article{Title: "Quiet Rename"}).Error; err != nil {
		t.Fatal(err)
	}

	var stored article
	if err := db.First(&stored, a.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Title != "Quiet Rename" {
		t.Fatalf("title = %q", stored.Title)
	}
	if stored.Slug != "launch-day" {
		t.Fatalf("partial update regenerated slug: %q", stored.Slug)
	}
}

func TestBatchCreateFillsEveryElement(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &article{})

	batch := []article{{Title: "First Post"}, {Title: "Second Post"}}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatal(err)
	}
	if batch[0].Slug != "first-post" || batch[1].Slug != "second-post" {
		t.Fatalf("batch slugs = %q, %q", batch[0].Slug, batch[1].Slug)
	}
	for i, a := range batch {
		if !sixDigits.MatchString(a.APIKey) {
			t.Fatalf("element %d api key = %q", i, a.APIKey)
		}
	}

	ptrBatch := []*article{{Title: "Third Post"}}
	if err := db.Create(&ptrBatch).Error; err != nil {
		t.Fatal(err)
	}
	if ptrBatch[0].Slug != "third-post" {
		t.Fatalf("pointer element slug = %q", ptrBatch[0].Slug)
	}
}

func TestPointerFieldFill(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &draft{})

	d := draft{Title: "Working Notes"}
	if err := db.Create(&d).Error; err != nil {
		t.Fatal(err)
	}
	if d.Slug == nil || *d.Slug != "working-notes" {
		t.Fatalf("slug = %v", d.Slug)
	}

	kept := "keep-me"
	d2 := draft{Title: "Other Notes", Slug: &kept}
	if err := db.Create(&d2).Error; err != nil {
		t.Fatal(err)
	}
	if *d2.Slug != "keep-me" {
		t.Fatalf("preset pointer slug overwritten: %q", *d2.Slug)
	}
}

func TestTagOptionsWinOverSettings(t *testing.T) {
	reg := generator.NewRegistry()
	err := reg.Apply(&generator.Settings{Generators: map[string]generator.Binding{
		"token": {Use: "token", Config: generator.Config{"length": 10, "pool": "alpha"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	db := openFillDB(t, New(reg), &article{})

	a := article{Title: "Precedence Check"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}
	if !sixDigits.MatchString(a.APIKey) {
		t.Fatalf("tag options should win over settings, got %q", a.APIKey)
	}
}

func TestRecordOverrideWins(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &stampedRecord{})

	r := stampedRecord{}
	if err := db.Create(&r).Error; err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^[0-9]{4}$`).MatchString(r.Code) {
		t.Fatalf("record override ignored, got %q", r.Code)
	}
}

func TestUnknownKindAbortsSave(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &unknownKindRecord{})

	err := db.Create(&unknownKindRecord{}).Error
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if !strings.Contains(err.Error(), "unknown generator kind") {
		t.Fatalf("unexpected error: %v", err)
	}

	var n int64
	if err := db.Model(&unknownKindRecord{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("aborted save left %d rows", n)
	}
}

func TestNonStringFieldRejected(t *testing.T) {
	db := openFillDB(t, New(generator.NewRegistry()), &untypedRecord{})

	err := db.Create(&untypedRecord{}).Error
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if !strings.Contains(err.Error(), "string or *string") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithLoggerReportsFills(t *testing.T) {
	buf := &bytes.Buffer{}
	log := hclog.New(&hclog.LoggerOptions{
		Output:     buf,
		Level:      hclog.Debug,
		JSONFormat: true,
	})
	db := openFillDB(t, New(generator.NewRegistry(), WithLogger(log)), &article{})

	a := article{Title: "My Great Post"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `"field":"Slug"`) || !strings.Contains(out, `"kind":"slug"`) {
		t.Fatalf("expected fill debug lines, got %s", out)
	}
	if strings.Contains(out, "my-great-post") {
		t.Fatalf("generated values must not be logged: %s", out)
	}
}

func TestParseTag(t *testing.T) {
	kind, source, overrides := parseTag("slug,source=Title,max_length=40,unique")
	if kind != "slug" || source != "Title" {
		t.Fatalf("kind=%q source=%q", kind, source)
	}
	if overrides["max_length"] != "40" || overrides["unique"] != true {
		t.Fatalf("overrides = %#v", overrides)
	}

	kind, source, overrides = parseTag("token")
	if kind != "token" || source != "" || overrides != nil {
		t.Fatalf("bare tag parsed as %q %q %#v", kind, source, overrides)
	}
}
