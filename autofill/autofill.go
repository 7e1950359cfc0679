// Package autofill is the gorm integration: a plugin that populates tagged
// string fields with generated values during create and update.
//
// Fields opt in with a gen tag naming the generator kind, optionally
// followed by call-site options:
//
//	type Article struct {
//		ID     uint
//		Title  string
//		Slug   string `gen:"slug,source=Title,unique"`
//		APIKey string `gen:"token,length=40,pool=hex"`
//	}
//
// A tagged field is filled only when it is currently empty. Options after
// the kind merge over the resolved generator's configuration; source is
// special, naming the field whose value seeds slug generation. Slug
// uniqueness probes run against the statement's table on the statement's
// own connection, so they observe the surrounding transaction.
package autofill

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/mmrzaf/modelkit/generator"
	"github.com/mmrzaf/modelkit/internal/sqlident"
)

// Plugin implements gorm's plugin contract. Register it with db.Use.
type Plugin struct {
	registry *generator.Registry
	log      hclog.Logger
}

// Option configures the plugin.
type Option func(*Plugin)

// WithLogger makes the plugin emit a debug line for every field it fills.
// Generated values never reach the log.
func WithLogger(log hclog.Logger) Option {
	return func(p *Plugin) { p.log = log }
}

// New builds a plugin resolving generators through reg.
func New(reg *generator.Registry, opts ...Option) *Plugin {
	p := &Plugin{
		registry: reg,
		log:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string { return "modelkit:autofill" }

// Initialize registers the fill callbacks ahead of gorm's own create and
// update steps, after model hooks have run.
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").
		Register("modelkit:autofill:create", p.fillCreate); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").
		Register("modelkit:autofill:update", p.fillUpdate)
}

func (p *Plugin) fillCreate(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	p.fill(db)
}

func (p *Plugin) fillUpdate(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	// Partial payloads (Updates with a struct or map distinct from the
	// model) are not the record; filling them would overwrite stored
	// values with fresh ones.
	if db.Statement.Dest != db.Statement.Model {
		return
	}
	p.fill(db)
}

func (p *Plugin) fill(db *gorm.DB) {
	rv := db.Statement.ReflectValue
	var result *multierror.Error

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			ev := indirect(rv.Index(i))
			if ev.Kind() != reflect.Struct {
				continue
			}
			if err := p.fillRecord(db, ev); err != nil {
				result = multierror.Append(result, err)
			}
		}
	case reflect.Struct:
		if err := p.fillRecord(db, rv); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		db.AddError(err)
	}
}

func (p *Plugin) fillRecord(db *gorm.DB, ev reflect.Value) error {
	// Values passed by value cannot be written to; gorm skips primary-key
	// write-back for them the same way.
	if !ev.CanAddr() {
		return nil
	}

	var result *multierror.Error
	for _, field := range db.Statement.Schema.Fields {
		tag := strings.TrimSpace(field.Tag.Get("gen"))
		if tag == "" || tag == "-" {
			continue
		}
		if !stringField(field.FieldType) {
			result = multierror.Append(result,
				fmt.Errorf("autofill %s: gen tag needs a string or *string field", field.Name))
			continue
		}
		if err := p.fillField(db, ev, field, tag); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("autofill %s: %w", field.Name, err))
		}
	}
	return result.ErrorOrNil()
}

func (p *Plugin) fillField(db *gorm.DB, ev reflect.Value, field *schema.Field, tag string) error {
	kind, source, overrides := parseTag(tag)
	if kind == "" {
		return fmt.Errorf("empty generator kind")
	}

	current, _ := field.ValueOf(db.Statement.Context, ev)
	if !emptyValue(current) {
		return nil
	}

	gen, err := p.registry.Resolve(kind, record(ev), field.Name)
	if err != nil {
		return err
	}
	if len(overrides) > 0 {
		gen = gen.SetConfig(overrides)
	}

	ctx := generator.Context{
		Record: record(ev),
		Field:  field.DBName,
		Exists: statementExists(db, ev),
	}
	if source != "" {
		src, err := sourceValue(db, ev, source)
		if err != nil {
			return err
		}
		ctx.Source = src
	}

	value, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	if err := field.Set(db.Statement.Context, ev, value); err != nil {
		return err
	}

	p.log.Debug("filled field",
		"model", db.Statement.Schema.Name,
		"field", field.Name,
		"kind", kind,
	)
	return nil
}

// parseTag splits "slug,source=Title,max_length=40,unique" into the kind,
// the source field name, and the remaining options as config overrides.
// Valueless options become boolean true.
func parseTag(tag string) (kind, source string, overrides generator.Config) {
	parts := strings.Split(tag, ",")
	kind = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, hasVal := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if key == "source" {
			source = strings.TrimSpace(val)
			continue
		}
		if overrides == nil {
			overrides = generator.Config{}
		}
		if !hasVal {
			overrides[key] = true
			continue
		}
		overrides[key] = strings.TrimSpace(val)
	}
	return kind, source, overrides
}

// statementExists binds the uniqueness predicate to the statement's table on
// the statement's connection, excluding the record's own row when its
// primary key is set.
func statementExists(db *gorm.DB, ev reflect.Value) generator.ExistsFunc {
	stmt := db.Statement
	table := stmt.Table
	if table == "" {
		table = stmt.Schema.Table
	}
	return func(column, value string) (bool, error) {
		if err := sqlident.Check("table", table); err != nil {
			return false, err
		}
		if err := sqlident.Check("column", column); err != nil {
			return false, err
		}
		tx := db.Session(&gorm.Session{NewDB: true}).Table(table).
			Where(fmt.Sprintf("%s = ?", column), value)
		if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil {
			if id, zero := pk.ValueOf(stmt.Context, ev); !zero {
				tx = tx.Where(fmt.Sprintf("%s <> ?", pk.DBName), id)
			}
		}
		var n int64
		if err := tx.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func sourceValue(db *gorm.DB, ev reflect.Value, name string) (string, error) {
	f := db.Statement.Schema.LookUpField(name)
	if f == nil {
		return "", fmt.Errorf("source field not found: %s", name)
	}
	v, _ := f.ValueOf(db.Statement.Context, ev)
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case *string:
		if s == nil {
			return "", nil
		}
		return *s, nil
	}
	return fmt.Sprint(v), nil
}

func record(ev reflect.Value) any {
	if ev.CanAddr() {
		return ev.Addr().Interface()
	}
	return ev.Interface()
}

func emptyValue(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case *string:
		return s == nil || *s == ""
	}
	return false
}

func stringField(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}
