// Package pathresolve implements CalKu's property path resolver:
// traversal of a dot/colon-notated path string against an arbitrary
// host target value.
package pathresolve

import (
	"reflect"
	"strings"

	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/value"
)

var illegalSegments = map[string]bool{
	"prototype":   true,
	"constructor": true,
	"__proto__":   true,
}

type segment struct {
	name    string
	bySep   byte // '.' or ':'
}

// split breaks path into segments, recording which separator preceded
// each one (the first segment is treated as preceded by '.'). An empty
// segment anywhere, or an empty path, is a path error.
func split(path string) ([]segment, error) {
	if path == "" {
		return nil, types.NewError(types.ErrEmptyPath, "property path must not be empty")
	}
	var segs []segment
	start := 0
	sep := byte('.')
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' || path[i] == ':' {
			name := path[start:i]
			if name == "" {
				return nil, types.NewError(types.ErrEmptyPathSegment, "empty path segment in \""+path+"\"")
			}
			segs = append(segs, segment{name: name, bySep: sep})
			if i < len(path) {
				sep = path[i]
			}
			start = i + 1
		}
	}
	return segs, nil
}

// Resolve traverses target according to path, returning Undefined when
// traversal runs into a Null/Undefined/missing value, Null when the final
// step resolves to an explicit nil, and the traversed value otherwise.
func Resolve(target interface{}, path string) (value.Value, error) {
	segs, err := split(path)
	if err != nil {
		return value.Value{}, err
	}
	for _, s := range segs {
		if illegalSegments[s.name] {
			return value.Value{}, types.NewError(types.ErrIllegalPathSegment,
				"illegal path segment: "+s.name)
		}
	}

	cur := target
	for i, s := range segs {
		last := i == len(segs)-1

		v, found := step(cur, s)
		if !found {
			return value.Undefined, nil
		}
		if v == nil {
			if last {
				return value.Null, nil
			}
			return value.Undefined, nil
		}
		cur = v
	}
	return value.From(cur), nil
}

// step resolves one segment against cur, per its separator kind.
func step(cur interface{}, s segment) (interface{}, bool) {
	cur = deref(cur)
	if cur == nil {
		return nil, false
	}
	if s.bySep == ':' {
		return indexStep(cur, s.name)
	}
	return keyStep(cur, s.name)
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func keyStep(cur interface{}, key string) (interface{}, bool) {
	rv := reflect.ValueOf(cur)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		if isFunc(mv) {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		fv := findField(rv, key)
		if !fv.IsValid() {
			return nil, false
		}
		if isFunc(fv) {
			return nil, false
		}
		return fv.Interface(), true
	default:
		return nil, false
	}
}

func findField(rv reflect.Value, key string) reflect.Value {
	if fv := rv.FieldByName(key); fv.IsValid() {
		return fv
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(f.Name, key) {
			return rv.Field(i)
		}
		if tag := f.Tag.Get("json"); tag != "" {
			name := strings.Split(tag, ",")[0]
			if strings.EqualFold(name, key) {
				return rv.Field(i)
			}
		}
	}
	return reflect.Value{}
}

func isFunc(v reflect.Value) bool {
	return v.Kind() == reflect.Func
}

func indexStep(cur interface{}, idxStr string) (interface{}, bool) {
	idx, ok := parseIndex(idxStr)
	if !ok {
		return nil, false
	}
	rv := reflect.ValueOf(cur)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		ev := rv.Index(idx)
		if isFunc(ev) {
			return nil, false
		}
		return ev.Interface(), true
	case reflect.String:
		runes := []rune(rv.String())
		if idx < 0 || idx >= len(runes) {
			return nil, false
		}
		return string(runes[idx]), true
	default:
		return nil, false
	}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
