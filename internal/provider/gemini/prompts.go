package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"pharmacounter/pkg/domain"
)

const assistInstruction = `Você é um consultor farmacêutico direto e prático.
REGRAS CRÍTICAS:
1. NÃO use saudações como "Olá", "Entendi", "Aqui está".
2. Vá direto ao ponto, comece a resposta imediatamente com a informação.
3. USE APENAS TEXTO PURO. NÃO use asteriscos (**), hashtags (#), hífens (-) como marcadores ou tabelas.
4. Se precisar listar algo, use apenas números ou quebras de linha simples.
5. Seja extremamente objetivo, focado em leitura rápida de 5 segundos.`

const chatInstruction = "Você é um assistente técnico. Seja curto e use apenas texto puro sem markdown."

const emptyCatalog = "Nenhum medicamento no catálogo."

// catalogIndicationRunes caps each record's indications in the chat context.
const catalogIndicationRunes = 80

func extractionPrompt(ingredient string) string {
	return fmt.Sprintf(`Gere informações técnicas detalhadas para o princípio ativo farmacêutico: %s.
Foque em ser preciso para uso em balcão de farmácia.
Classifique corretamente cada nome comercial como 'Referência', 'Similar' ou 'Genérico'.
Identifique claramente os sintomas tratados como palavras-chave únicas (ex: ["dor", "febre", "inflamação"]).`, ingredient)
}

func assistPrompt(mode domain.AssistMode, subject1, subject2 string) (string, error) {
	switch mode {
	case domain.AssistExplain:
		return fmt.Sprintf(`Explique objetivamente o que é e para que serve "%s".`, subject1), nil
	case domain.AssistOffer:
		return fmt.Sprintf(`Dê 3 argumentos rápidos e profissionais de venda para oferecer "%s" ao cliente no balcão.`, subject1), nil
	case domain.AssistCompare:
		return fmt.Sprintf(`Compare brevemente "%s" e "%s". Liste apenas as diferenças principais e quando preferir um ao outro.`, subject1, subject2), nil
	default:
		return "", fmt.Errorf("unsupported assist mode %q", mode)
	}
}

// chatSystemInstruction appends a one-line summary per catalog record.
func chatSystemInstruction(catalog []domain.CatalogEntry) string {
	var b strings.Builder
	b.WriteString(chatInstruction)
	b.WriteString("\n\nCatálogo da farmácia:\n")
	if len(catalog) == 0 {
		b.WriteString(emptyCatalog)
		return b.String()
	}
	for i, e := range catalog {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s...", e.Name, truncateRunes(e.Indications, catalogIndicationRunes))
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// factsSchema constrains extraction output to the StructuredFacts shape.
func factsSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"indications":       str("Principais usos e sintomas tratados."),
			"contraindications": str("Quem não deve usar este medicamento."),
			"interactions":      str("Principais interações com outros remédios."),
			"mechanismOfAction": str("Como a substância age no organismo."),
			"symptoms": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Lista de sintomas que este medicamento trata (ex: dor, febre, tosse).",
			},
			"standardDosage": str("Posologia comum recomendada."),
			"commonTradeNames": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":         {Type: genai.TypeString},
						"manufacturer": {Type: genai.TypeString},
						"type":         str("Comprimido, Líquido, Xarope, etc."),
						"category":     str("DEVE ser 'Referência', 'Similar' ou 'Genérico'."),
					},
					Required: []string{"name", "category"},
				},
			},
		},
		Required: []string{"indications", "contraindications", "interactions", "mechanismOfAction", "commonTradeNames", "symptoms"},
	}
}
