package contentstream

// Object is a PDF object appearing as a content stream operand.
type Object interface{}

// Int represents a PDF integer.
type Int int64

// Real represents a PDF real number.
type Real float64

// Bool represents a PDF boolean.
type Bool bool

// Name represents a PDF name object (written /Name).
type Name string

// String represents a PDF string object.
type String string

// Null represents the PDF null object.
type Null struct{}

// Array represents a PDF array.
type Array []Object

// Dict represents a PDF dictionary.
type Dict map[string]Object

// Get returns the value for a key, or nil if absent.
func (d Dict) Get(key string) Object {
	return d[key]
}

// ToFloat converts a numeric operand to float64. The second return value
// reports whether the object was numeric.
func ToFloat(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// ToInt converts a numeric operand to int. Reals are truncated.
func ToInt(obj Object) (int, bool) {
	switch v := obj.(type) {
	case Int:
		return int(v), true
	case Real:
		return int(v), true
	default:
		return 0, false
	}
}
