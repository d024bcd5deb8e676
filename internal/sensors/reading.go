package sensors

import "strconv"

// Reading is the result of a sensor query: either a valid value or unavailable.
type Reading struct {
	value float64
	valid bool
}

// Valid creates a Reading carrying the given value
func Valid(value float64) Reading {
	return Reading{value: value, valid: true}
}

// Unavailable creates a Reading without a value
func Unavailable() Reading {
	return Reading{}
}

// Get returns the value and whether it is valid
func (r Reading) Get() (float64, bool) {
	return r.value, r.valid
}

func (r Reading) IsValid() bool {
	return r.valid
}

// ValueOr returns the value of a valid reading, or the fallback otherwise
func (r Reading) ValueOr(fallback float64) float64 {
	if !r.valid {
		return fallback
	}
	return r.value
}

func (r Reading) String() string {
	if !r.valid {
		return "unavailable"
	}
	return strconv.FormatFloat(r.value, 'f', 2, 64)
}
