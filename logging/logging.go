// Package logging wires hclog for the module: a constructor with lenient
// level parsing and a helper that scopes a logger to a model instance. The
// core generator packages never log; loggers belong to the integration
// surfaces (plugin, CLI, stores).
package logging

import (
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mmrzaf/modelkit/routes"
)

// New builds a named hclog logger. Unknown or empty level strings fall back
// to info.
func New(name, level string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: lvl,
	})
}

// ForModel derives a model-scoped sublogger named after the model's table
// (TableName when declared, plural snake case otherwise), with the primary
// key attached when set. Values that have no derivable name get the base
// logger back.
func ForModel(log hclog.Logger, model any) hclog.Logger {
	name := routes.ResourceName(model)
	if name == "" {
		return log
	}
	sub := log.Named(name)
	if id, ok := primaryKey(model); ok {
		sub = sub.With("id", id)
	}
	return sub
}

func primaryKey(model any) (any, bool) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	f := v.FieldByName("ID")
	if !f.IsValid() || !f.CanInterface() || f.IsZero() {
		return nil, false
	}
	return f.Interface(), true
}
