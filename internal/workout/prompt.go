package workout

import (
	"fmt"
	"strings"
)

const systemPrompt = "Você é um personal trainer experiente especializado em criar treinos personalizados. Sempre responda com JSON válido."

type Request struct {
	UserID        string   `json:"userId"`
	Goals         string   `json:"goals"`
	Experience    string   `json:"experience"`
	Equipment     []string `json:"equipment"`
	TimeAvailable int      `json:"timeAvailable"`
	TargetMuscles []string `json:"targetMuscles"`
	Restrictions  string   `json:"restrictions,omitempty"`
}

// buildPrompt produces the deterministic instruction string sent as the
// user message. The output-format block doubles as the parse contract.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Crie um treino personalizado baseado nas seguintes informações:\n\n")
	b.WriteString("PERFIL DO USUÁRIO:\n")
	fmt.Fprintf(&b, "- Objetivo: %s\n", req.Goals)
	fmt.Fprintf(&b, "- Nível de experiência: %s\n", req.Experience)
	fmt.Fprintf(&b, "- Equipamentos disponíveis: %s\n", strings.Join(req.Equipment, ", "))
	fmt.Fprintf(&b, "- Tempo disponível: %d minutos\n", req.TimeAvailable)
	fmt.Fprintf(&b, "- Músculos alvo: %s\n", strings.Join(req.TargetMuscles, ", "))
	if req.Restrictions != "" {
		fmt.Fprintf(&b, "- Restrições/lesões: %s\n", req.Restrictions)
	}
	b.WriteString(`
INSTRUÇÕES:
1. Crie um treino adequado ao nível e objetivos
2. Use apenas os equipamentos disponíveis
3. Organize em aquecimento, treino principal e alongamento
4. Para cada exercício inclua: nome, séries, repetições, descanso, instruções
5. Mantenha dentro do tempo disponível
6. Foque nos músculos alvo especificados

FORMATO DE RESPOSTA (JSON):
{
  "name": "Nome do Treino",
  "description": "Descrição breve",
  "estimated_duration": número_em_minutos,
  "difficulty_level": 1-5,
  "exercises": [
    {
      "name": "Nome do Exercício",
      "type": "strength/cardio/flexibility",
      "muscle_groups": ["músculo1", "músculo2"],
      "sets": número,
      "reps": "número ou tempo",
      "rest": "tempo_em_segundos",
      "instructions": "instruções detalhadas",
      "equipment": ["equipamento_usado"]
    }
  ]
}

Responda APENAS com o JSON válido, sem texto adicional.`)
	return b.String()
}
