package fields

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type document struct {
	ID   uint `gorm:"primarykey"`
	Body JSON `gorm:"type:text"`
	Tags Tags `gorm:"type:text"`
	Meta Meta `gorm:"type:text"`
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fields.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&document{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestColumnsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	doc := document{
		Body: JSON(`{"title":"hello"}`),
		Tags: Tags{"Go", "db"},
		Meta: Meta{"shipping": map[string]any{"free_shipping": true}},
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatal(err)
	}

	var got document
	if err := db.First(&got, doc.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Body.String() != `{"title":"hello"}` {
		t.Fatalf("unexpected body %q", got.Body)
	}
	if len(got.Tags) != 2 || !got.Tags.Has("go") {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	if v := got.Meta.Get("shipping.free_shipping", false); v != true {
		t.Fatalf("unexpected meta %v", got.Meta)
	}
}

func TestColumnsNullRoundTrip(t *testing.T) {
	db := openTestDB(t)

	doc := document{}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatal(err)
	}

	var got document
	if err := db.First(&got, doc.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Body != nil || got.Tags != nil || got.Meta != nil {
		t.Fatalf("expected NULL columns back as nil, got %#v", got)
	}
}
