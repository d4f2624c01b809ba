package diet

import "math"

// Harris-Benedict BMR, branched by gender. Portuguese and English
// gender/goal/activity keys are accepted because the product's web
// client sends either depending on locale.

const defaultActivityFactor = 1.55

var activityFactors = map[string]float64{
	"sedentary":           1.2,
	"lightly_active":      1.375,
	"moderately_active":   1.55,
	"very_active":         1.725,
	"extremely_active":    1.9,
	"sedentario":          1.2,
	"levemente_ativo":     1.375,
	"moderadamente_ativo": 1.55,
	"muito_ativo":         1.725,
	"extremamente_ativo":  1.9,
}

func isMale(gender string) bool {
	switch gender {
	case "male", "masculino", "m":
		return true
	}
	return false
}

func isWeightLoss(goal string) bool {
	switch goal {
	case "weight_loss", "emagrecimento", "perda_peso":
		return true
	}
	return false
}

func isWeightGain(goal string) bool {
	switch goal {
	case "weight_gain", "ganho_peso", "ganho_massa":
		return true
	}
	return false
}

// BMR estimates basal metabolic rate in kcal/day.
func BMR(gender string, weightKg, heightCm, ageYears float64) float64 {
	if isMale(gender) {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*ageYears
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*ageYears
}

// ActivityFactor maps an activity-level key to its multiplier. Unknown
// keys fall back to moderately active (1.55).
func ActivityFactor(level string) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return defaultActivityFactor
}

// TargetCalories derives the daily calorie target: BMR scaled by the
// activity factor, then adjusted -15% for weight loss or +15% for
// weight gain. Both steps round like the original product (total first,
// then target).
func TargetCalories(gender string, weightKg, heightCm, ageYears float64, activityLevel, goal string) int {
	total := math.Round(BMR(gender, weightKg, heightCm, ageYears) * ActivityFactor(activityLevel))
	switch {
	case isWeightLoss(goal):
		return int(math.Round(total * 0.85))
	case isWeightGain(goal):
		return int(math.Round(total * 1.15))
	default:
		return int(total)
	}
}
