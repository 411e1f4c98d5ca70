package users

import "math"

type BMI struct {
	Value float64 `json:"value"`
	// Position of the value on a 15..35 scale, in percent.
	Position float64 `json:"position"`
}

// ComputeBMI returns false when weight or height is not set.
func ComputeBMI(weightKg, heightCm float64) (BMI, bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return BMI{}, false
	}
	heightM := heightCm / 100
	value := weightKg / (heightM * heightM)
	position := math.Min(math.Max((value-15)/20*100, 0), 100)
	return BMI{
		Value:    math.Round(value*10) / 10,
		Position: position,
	}, true
}
