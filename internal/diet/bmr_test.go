package diet

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBMR(t *testing.T) {
	// 88.362 + 13.397*70 + 4.799*170 - 5.677*30
	if got := BMR("male", 70, 170, 30); !almostEqual(got, 1671.672) {
		t.Fatalf("male BMR = %v, want 1671.672", got)
	}
	// 447.593 + 9.247*60 + 3.098*165 - 4.330*28
	if got := BMR("female", 60, 165, 28); !almostEqual(got, 1392.343) {
		t.Fatalf("female BMR = %v, want 1392.343", got)
	}
	// Portuguese gender keys hit the male branch too.
	if BMR("masculino", 70, 170, 30) != BMR("male", 70, 170, 30) {
		t.Fatalf("masculino should equal male")
	}
	// Anything unrecognized falls back to the female formula.
	if BMR("other", 60, 165, 28) != BMR("female", 60, 165, 28) {
		t.Fatalf("unknown gender should use female formula")
	}
}

func TestActivityFactor(t *testing.T) {
	cases := map[string]float64{
		"sedentary":         1.2,
		"sedentario":        1.2,
		"lightly_active":    1.375,
		"moderately_active": 1.55,
		"muito_ativo":       1.725,
		"extremely_active":  1.9,
		"whatever":          1.55, // unknown -> moderate
		"":                  1.55,
	}
	for level, want := range cases {
		if got := ActivityFactor(level); got != want {
			t.Fatalf("ActivityFactor(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestTargetCalories(t *testing.T) {
	// maintenance: round(1671.672 * 1.55) = 2591
	if got := TargetCalories("male", 70, 170, 30, "moderately_active", "maintenance"); got != 2591 {
		t.Fatalf("maintenance target = %d, want 2591", got)
	}

	// weight loss: round(1858.022 * 1.2) = 2230, round(2230 * 0.85) = 1896
	if got := TargetCalories("male", 80, 175, 25, "sedentary", "weight_loss"); got != 1896 {
		t.Fatalf("weight loss target = %d, want 1896", got)
	}

	// weight gain: round(2230 * 1.15) = 2565
	if got := TargetCalories("male", 80, 175, 25, "sedentary", "weight_gain"); got != 2565 {
		t.Fatalf("weight gain target = %d, want 2565", got)
	}

	// Portuguese goal synonyms behave the same.
	if TargetCalories("male", 80, 175, 25, "sedentario", "emagrecimento") != 1896 {
		t.Fatalf("emagrecimento should match weight_loss")
	}
	if TargetCalories("male", 80, 175, 25, "sedentario", "ganho_massa") != 2565 {
		t.Fatalf("ganho_massa should match weight_gain")
	}
}
