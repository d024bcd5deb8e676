package util

// Min returns the smallest value of s, 0 for an empty slice
func Min(s []float64) float64 {
	if len(s) < 1 {
		return 0
	}
	result := s[0]
	for _, v := range s {
		if v < result {
			result = v
		}
	}
	return result
}

// Max returns the largest value of s, 0 for an empty slice
func Max(s []float64) float64 {
	if len(s) < 1 {
		return 0
	}
	result := s[0]
	for _, v := range s {
		if v > result {
			result = v
		}
	}
	return result
}
