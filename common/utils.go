package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PadTo4 returns data extended with zero bytes so its length is a multiple of four,
// the copy alignment WebGPU requires for buffer uploads. The input is returned
// unchanged when it is already aligned.
//
// Parameters:
//   - data: the bytes to pad
//
// Returns:
//   - []byte: data, or a padded copy of it
func PadTo4(data []byte) []byte {
	rem := len(data) % 4
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+4-rem)
	copy(padded, data)
	return padded
}
