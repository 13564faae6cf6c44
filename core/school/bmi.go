package school

import "math"

type BMIStatus string

const (
	BMIUnderweight   BMIStatus = "underweight"
	BMINormal        BMIStatus = "normal"
	BMIOverweight    BMIStatus = "overweight"
	BMIObese         BMIStatus = "obese"
	BMISeverelyObese BMIStatus = "severely obese"
)

var bmiThaiLabels = map[BMIStatus]string{
	BMIUnderweight:   "ผอม",
	BMINormal:        "ปกติ",
	BMIOverweight:    "น้ำหนักเกิน",
	BMIObese:         "อ้วน",
	BMISeverelyObese: "อ้วนมาก",
}

func (s BMIStatus) Thai() string {
	return bmiThaiLabels[s]
}

// ComputeBMI returns the body mass index rounded to one decimal and its status bucket.
// The bucket is picked from the unrounded value. A missing weight or height gives 0 and an empty status.
func ComputeBMI(weightKg, heightCm float64) (float64, BMIStatus) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, ""
	}
	m := heightCm / 100
	raw := weightKg / (m * m)
	bmi := math.Round(raw*10) / 10
	switch {
	case raw < 18.5:
		return bmi, BMIUnderweight
	case raw < 23:
		return bmi, BMINormal
	case raw < 25:
		return bmi, BMIOverweight
	case raw < 30:
		return bmi, BMIObese
	default:
		return bmi, BMISeverelyObese
	}
}
