// Package routes builds URLs for named route patterns. Patterns use the
// {param} placeholder style of net/http ServeMux patterns, and model-aware
// helpers derive route names and ids from gorm-style model structs.
package routes

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

var paramRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Router maps route names to URL patterns. The zero value is not usable;
// construct with NewRouter.
type Router struct {
	mu       sync.RWMutex
	patterns map[string]string
}

func NewRouter() *Router {
	return &Router{patterns: make(map[string]string)}
}

// Register binds name to pattern, replacing any previous binding.
func (r *Router) Register(name, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[name] = pattern
}

// Names lists the registered route names, sorted.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.patterns))
	for name := range r.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// URL substitutes params into the named pattern. Every placeholder in the
// pattern must be supplied; params the pattern does not mention are appended
// as a query string, sorted by key. Values render through fmt and are
// URL-escaped.
func (r *Router) URL(name string, params map[string]any) (string, error) {
	r.mu.RLock()
	pattern, ok := r.patterns[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("route not found: %s", name)
	}

	used := make(map[string]struct{}, len(params))
	var missing []string
	out := paramRe.ReplaceAllStringFunc(pattern, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := params[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		used[key] = struct{}{}
		return url.PathEscape(fmt.Sprint(v))
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("route %s: missing params: %s", name, strings.Join(missing, ", "))
	}

	extras := make([]string, 0)
	for key := range params {
		if _, ok := used[key]; !ok {
			extras = append(extras, key)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		q := url.Values{}
		for _, key := range extras {
			q.Set(key, fmt.Sprint(params[key]))
		}
		out += "?" + q.Encode()
	}
	return out, nil
}

// MustURL is URL but panics on failure. For wiring code where a bad route
// name is a programming error.
func (r *Router) MustURL(name string, params map[string]any) string {
	u, err := r.URL(name, params)
	if err != nil {
		panic(err)
	}
	return u
}

// ModelURL resolves "<resource>.<action>" for the model and binds {id} from
// the model's ID field when the pattern asks for one.
func (r *Router) ModelURL(model any, action string) (string, error) {
	resource := ResourceName(model)
	if resource == "" {
		return "", fmt.Errorf("cannot derive resource name for %T", model)
	}
	name := resource + "." + action

	r.mu.RLock()
	pattern, ok := r.patterns[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("route not found: %s", name)
	}

	params := map[string]any{}
	if strings.Contains(pattern, "{id}") {
		id, ok := modelID(model)
		if !ok {
			return "", fmt.Errorf("route %s needs {id} but %T has no set ID field", name, model)
		}
		params["id"] = id
	}
	return r.URL(name, params)
}

// ResourceName derives the plural snake_case resource for a model value:
// *WorkspaceProject becomes "workspace_projects". A TableName method wins
// over the derived name, mirroring gorm's own naming.
func ResourceName(model any) string {
	if tn, ok := model.(interface{ TableName() string }); ok {
		return tn.TableName()
	}
	t := reflect.TypeOf(model)
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return ""
	}
	return inflection.Plural(strcase.ToSnake(t.Name()))
}

func modelID(model any) (any, bool) {
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
