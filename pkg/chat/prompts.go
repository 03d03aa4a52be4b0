package chat

// Request kinds. Insight requests get a terse analyst prompt and a tighter
// token budget; everything else is the general assistant.
const (
	KindChat    = "chat"
	KindInsight = "insight"
)

const insightPrompt = `You are an expert analyst in productivity and health.
Give a SHORT, CONCRETE piece of advice (2-3 sentences maximum).
Get to the point, no generic filler.`

const assistantPrompt = `You are Smardesk, a smart and friendly assistant. You help with focus, productivity, posture and learning.

IMPORTANT: Format your answers nicely:
- Break long answers into paragraphs (use a double line break between paragraphs)
- Use lists where appropriate:
  - Use "- " at the start of a line for enumerations
  - Use "1. ", "2. " and so on for steps
- Avoid long walls of text
- Be concise but informative`

// systemPrompt returns the system prompt for a request kind.
func systemPrompt(kind string) string {
	if kind == KindInsight {
		return insightPrompt
	}
	return assistantPrompt
}

// temperatureFor returns the sampling temperature for a request kind.
func temperatureFor(kind string) float64 {
	if kind == KindInsight {
		return 0.7
	}
	return 0.8
}

// maxTokensFor returns the completion token budget for a request kind.
func maxTokensFor(kind string) int {
	if kind == KindInsight {
		return 200
	}
	return 500
}
