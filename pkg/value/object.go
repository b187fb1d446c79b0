package value

// Object is an insertion-ordered string-keyed map of Values. Insertion
// order is not semantically significant for equality purposes, but an
// ordered representation keeps iteration (function argument flattening,
// property enumeration) deterministic across calls, matching the
// teacher's OrderedObject treatment of JSON objects.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set inserts or replaces the value for key, appending key to the
// iteration order only the first time it is seen.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get retrieves the value for key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Clone returns a deep-enough copy: a new key slice and map, but Values
// (themselves immutable by convention) are shared.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}
