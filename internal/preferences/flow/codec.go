package flow

// Codec converts a preference between its typed form and the string the
// store persists.
type Codec[T any] struct {
	Parse  func(string) (T, error)
	Format func(T) string
}

// StringCodec stores strings verbatim.
var StringCodec = Codec[string]{
	Parse:  func(s string) (string, error) { return s, nil },
	Format: func(s string) string { return s },
}
