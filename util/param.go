package util

// Param is the broadcast channel data type
type Param struct {
	Vehicle string
	Key     string
	Val     interface{}
}

// UniqueID returns unique identifier for parameter Vehicle/Key combination
func (p Param) UniqueID() string {
	if p.Vehicle == "" {
		return p.Key
	}
	return p.Vehicle + "." + p.Key
}
