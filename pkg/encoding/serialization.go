package encoding

// Serializable is implemented by frames that encode to and decode from the
// binary wire layout in place.
type Serializable[T any] interface {
	Serialize() ([]byte, error)
	Deserialize(data []byte) error
}
