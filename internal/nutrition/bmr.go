package nutrition

import (
	"errors"
	"strings"
)

// ErrInvalidGender is returned by ComputeBMR for anything but male or female.
var ErrInvalidGender = errors.New("gender must be male or female")

// ComputeBMR returns the basal metabolic rate in kcal/day using the revised
// Harris-Benedict constants. The result is not rounded.
func ComputeBMR(gender string, weightKg, heightCm, age float64) (float64, error) {
	switch strings.ToLower(gender) {
	case "male":
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*age, nil
	case "female":
		return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.33*age, nil
	default:
		return 0, ErrInvalidGender
	}
}
