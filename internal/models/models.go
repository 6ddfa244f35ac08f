package models

// JSONValue is a generic type to represent any JSON value.
// It holds one of *JSONObject, JSONArray, string, json.Number, bool or nil.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object. Unlike a Go map it keeps the keys in
// the order they were first inserted, so a rewritten document keeps the
// layout of the original file.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewJSONObject creates an empty object.
func NewJSONObject() *JSONObject {
	return &JSONObject{values: make(map[string]JSONValue)}
}

// Set stores value under key. A key that already exists keeps its position
// and takes the new value (last write wins).
func (o *JSONObject) Set(key string, value JSONValue) {
	if o.values == nil {
		o.values = make(map[string]JSONValue)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *JSONObject) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of properties.
func (o *JSONObject) Len() int {
	return len(o.keys)
}

// RootKind describes what sits at the root of a parsed document
type RootKind string

const (
	RootObject RootKind = "object"
	RootArray  RootKind = "array"
	RootScalar RootKind = "scalar"
)

// Document is a parsed JSON file. It is owned by a single processing pass
// and discarded once the rewritten text has been written.
type Document struct {
	Root     JSONValue
	RootKind RootKind
}
