package value

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// From converts an arbitrary host value (as supplied by callers of the
// Expression façade's Value/ValueAt) into CalKu's runtime Value. Host maps
// carry no inherent key order, so Object keys are sorted for determinism.
func From(raw interface{}) Value {
	if raw == nil {
		return Null
	}
	if v, ok := raw.(Value); ok {
		return v
	}
	if t, ok := raw.(time.Time); ok {
		return NewDate(t)
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return NewBoolean(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewNumber(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewNumber(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return NewNumber(rv.Float())
	case reflect.String:
		return NewString(rv.String())
	case reflect.Slice, reflect.Array:
		arr := make([]Value, rv.Len())
		for i := range arr {
			arr[i] = From(rv.Index(i).Interface())
		}
		return NewArray(arr)
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		kvs := map[string]interface{}{}
		for _, k := range rv.MapKeys() {
			ks := toStringKey(k)
			keys = append(keys, ks)
			kvs[ks] = rv.MapIndex(k).Interface()
		}
		sort.Strings(keys)
		obj := NewObjectValue(NewObject())
		for _, k := range keys {
			obj.Obj.Set(k, From(kvs[k]))
		}
		return obj
	case reflect.Struct:
		obj := NewObjectValue(NewObject())
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			obj.Obj.Set(f.Name, From(rv.Field(i).Interface()))
		}
		return obj
	default:
		return Null
	}
}

func toStringKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}
