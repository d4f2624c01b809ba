package diet

import (
	"fmt"
	"strings"
)

const systemPrompt = "Você é um nutricionista experiente especializado em criar planos alimentares personalizados. Sempre responda com JSON válido."

type Request struct {
	UserID        string   `json:"userId"`
	Goal          string   `json:"goal"`
	WeightKg      *float64 `json:"weight,omitempty"`
	HeightCm      *float64 `json:"height,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	ActivityLevel string   `json:"activityLevel"`
	Restrictions  string   `json:"restrictions,omitempty"`
	Preferences   string   `json:"preferences,omitempty"`
}

// anthropometric defaults used when no assessment data was sent
const (
	defaultWeightKg = 70.0
	defaultHeightCm = 170.0
	defaultAge      = 30
	defaultGender   = "masculino"
)

type promptInputs struct {
	weightKg       float64
	heightCm       float64
	age            int
	gender         string
	targetCalories int
}

func resolveInputs(req Request) promptInputs {
	in := promptInputs{
		weightKg: defaultWeightKg,
		heightCm: defaultHeightCm,
		age:      defaultAge,
		gender:   defaultGender,
	}
	if req.WeightKg != nil && *req.WeightKg > 0 {
		in.weightKg = *req.WeightKg
	}
	if req.HeightCm != nil && *req.HeightCm > 0 {
		in.heightCm = *req.HeightCm
	}
	if req.Age != nil && *req.Age > 0 {
		in.age = *req.Age
	}
	if req.Gender != "" {
		in.gender = req.Gender
	}
	in.targetCalories = TargetCalories(in.gender, in.weightKg, in.heightCm, float64(in.age), req.ActivityLevel, req.Goal)
	return in
}

func buildPrompt(req Request, in promptInputs) string {
	var b strings.Builder
	b.WriteString("Crie um plano alimentar personalizado baseado nas seguintes informações:\n\n")
	b.WriteString("PERFIL DO USUÁRIO:\n")
	fmt.Fprintf(&b, "- Objetivo: %s\n", req.Goal)
	fmt.Fprintf(&b, "- Peso: %.0fkg\n", in.weightKg)
	fmt.Fprintf(&b, "- Altura: %.0fcm\n", in.heightCm)
	fmt.Fprintf(&b, "- Idade: %d anos\n", in.age)
	fmt.Fprintf(&b, "- Gênero: %s\n", in.gender)
	fmt.Fprintf(&b, "- Nível de atividade: %s\n", req.ActivityLevel)
	fmt.Fprintf(&b, "- Calorias alvo: %d kcal/dia\n", in.targetCalories)
	if req.Restrictions != "" {
		fmt.Fprintf(&b, "- Restrições alimentares: %s\n", req.Restrictions)
	}
	if req.Preferences != "" {
		fmt.Fprintf(&b, "- Preferências: %s\n", req.Preferences)
	}
	fmt.Fprintf(&b, `
INSTRUÇÕES:
1. Crie um plano de 1 dia com 5-6 refeições
2. Distribua as calorias de forma equilibrada
3. Inclua macronutrientes balanceados (proteína, carboidratos, gorduras)
4. Considere as restrições e preferências mencionadas
5. Adicione horários sugeridos para as refeições
6. Inclua opções nutritivas e saudáveis

FORMATO DE RESPOSTA (JSON):
{
  "name": "Plano Alimentar - [Objetivo]",
  "description": "Descrição do plano",
  "daily_calories": %d,
  "daily_protein": valor_em_gramas,
  "daily_carbs": valor_em_gramas,
  "daily_fat": valor_em_gramas,
  "meals": [
    {
      "category": "breakfast/lunch/dinner/morning_snack/afternoon_snack",
      "name": "Nome da Refeição",
      "suggested_time": "HH:MM",
      "ingredients": [
        {
          "name": "ingrediente",
          "quantity": "quantidade",
          "unit": "unidade"
        }
      ],
      "calories": número,
      "protein": valor_em_gramas,
      "carbs": valor_em_gramas,
      "fat": valor_em_gramas,
      "preparation_time": minutos,
      "instructions": "instruções de preparo"
    }
  ]
}

Responda APENAS com o JSON válido, sem texto adicional.`, in.targetCalories)
	return b.String()
}
