package chat

import (
	"fmt"
	"strings"

	"github.com/jonafit/coach-platform/internal/models"
)

// systemPrompt selects the instruction template for a conversation type
// and interpolates the caller's latest assessment data when present.
// Missing assessment data just omits the interpolation.
func systemPrompt(convType string, a *models.PhysicalAssessment) string {
	var b strings.Builder
	switch convType {
	case TypeWorkout:
		b.WriteString("Você é um personal trainer experiente da Academia Jonatasafado. Responda dúvidas sobre treinos, exercícios, técnicas e progressão.")
		if a != nil && a.WeightKg != nil && a.HeightCm != nil {
			fmt.Fprintf(&b, " Dados do usuário: Peso: %.1fkg, Altura: %.0fcm, IMC: %.1f",
				*a.WeightKg, *a.HeightCm, bmi(*a.WeightKg, *a.HeightCm))
		}
	case TypeNutrition:
		b.WriteString("Você é um nutricionista experiente da Academia Jonatasafado. Responda dúvidas sobre alimentação, dietas, suplementação e nutrição esportiva.")
		if a != nil && a.WeightKg != nil && a.HeightCm != nil {
			fmt.Fprintf(&b, " Dados do usuário: Peso: %.1fkg, Altura: %.0fcm", *a.WeightKg, *a.HeightCm)
		}
	case TypeProgress:
		b.WriteString("Você é um especialista em acompanhamento de progresso da Academia Jonatasafado. Ajude a analisar evolução, metas e ajustes necessários.")
		if a != nil && a.WeightKg != nil {
			fmt.Fprintf(&b, " Dados atuais: Peso: %.1fkg", *a.WeightKg)
			if a.BodyFatPercentage != nil {
				fmt.Fprintf(&b, ", BF: %.1f%%", *a.BodyFatPercentage)
			}
			if a.MuscleMassKg != nil {
				fmt.Fprintf(&b, ", Massa muscular: %.1fkg", *a.MuscleMassKg)
			}
		}
	default:
		b.WriteString("Você é um assistente da Academia Jonatasafado especializado em fitness e bem-estar. Responda de forma amigável e profissional sobre qualquer dúvida relacionada à academia, treinos, nutrição e saúde.")
	}
	return b.String()
}

func bmi(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return weightKg / (h * h)
}
