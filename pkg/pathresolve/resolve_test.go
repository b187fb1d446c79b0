package pathresolve

import (
	"testing"

	"github.com/appku/calku/pkg/value"
)

func resolve(t *testing.T, target interface{}, path string) value.Value {
	t.Helper()
	v, err := Resolve(target, path)
	if err != nil {
		t.Fatalf("Resolve(%q) returned error: %v", path, err)
	}
	return v
}

func TestResolveMapKeyAndIndex(t *testing.T) {
	target := map[string]interface{}{
		"test": map[string]interface{}{
			"moose": []interface{}{
				map[string]interface{}{"hello": "mars"},
				map[string]interface{}{"hello": "jupiter", "moons": []interface{}{"io", "europa"}},
				map[string]interface{}{"hello": "neptune", "meta": map[string]interface{}{"a": 1, "b": 2}},
			},
		},
	}
	got := resolve(t, target, "test.moose:1.moons:1:2")
	if got.Kind != value.KindString || got.S != "r" {
		t.Fatalf("got %#v, want string \"r\"", got)
	}
}

func TestResolveStructFieldCaseInsensitive(t *testing.T) {
	type inner struct {
		Name string `json:"name"`
	}
	got := resolve(t, inner{Name: "x"}, "name")
	if got.Kind != value.KindString || got.S != "x" {
		t.Errorf("got %#v, want string x", got)
	}
}

func TestResolveMissingKeyIsUndefined(t *testing.T) {
	got := resolve(t, map[string]interface{}{"a": 1}, "b")
	if got.Kind != value.KindUndefined {
		t.Errorf("got %#v, want Undefined", got)
	}
}

func TestResolveExplicitNilIsNullAtLastSegment(t *testing.T) {
	got := resolve(t, map[string]interface{}{"a": nil}, "a")
	if got.Kind != value.KindNull {
		t.Errorf("got %#v, want Null", got)
	}
}

func TestResolveNilMidPathIsUndefined(t *testing.T) {
	got := resolve(t, map[string]interface{}{"a": nil}, "a.b")
	if got.Kind != value.KindUndefined {
		t.Errorf("got %#v, want Undefined (can't traverse through a nil mid-path)", got)
	}
}

func TestResolveEmptyPathError(t *testing.T) {
	if _, err := Resolve(map[string]interface{}{}, ""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestResolveEmptySegmentError(t *testing.T) {
	if _, err := Resolve(map[string]interface{}{}, "a..b"); err == nil {
		t.Fatal("expected an error for an empty path segment")
	}
}

func TestResolveIllegalSegmentError(t *testing.T) {
	for _, bad := range []string{"prototype", "constructor", "__proto__"} {
		if _, err := Resolve(map[string]interface{}{}, bad); err == nil {
			t.Errorf("expected an error resolving illegal segment %q", bad)
		}
	}
}

func TestResolveStringRuneIndex(t *testing.T) {
	got := resolve(t, "europa", ":2")
	if got.Kind != value.KindString || got.S != "r" {
		t.Errorf("got %#v, want \"r\"", got)
	}
}

func TestResolveOutOfBoundsIndexIsUndefined(t *testing.T) {
	got := resolve(t, []interface{}{1, 2}, ":5")
	if got.Kind != value.KindUndefined {
		t.Errorf("got %#v, want Undefined", got)
	}
}

func TestResolveNonStringKeyedMapDoesNotPanic(t *testing.T) {
	target := map[int]string{1: "x"}
	got, err := Resolve(target, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != value.KindUndefined {
		t.Errorf("got %#v, want Undefined for a non-string-keyed map", got)
	}
}
