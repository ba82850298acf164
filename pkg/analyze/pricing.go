package analyze

// Per-million-token pricing for the models we route through OpenRouter.
// Unlisted models cost 0 so usage is still logged, just without an estimate.
var modelPricing = map[string]struct{ input, output float64 }{
	"anthropic/claude-sonnet-4":            {input: 3.0, output: 15.0},
	"anthropic/claude-3-5-sonnet":          {input: 3.0, output: 15.0},
	"anthropic/claude-3-5-haiku":           {input: 1.0, output: 5.0},
	"anthropic/claude-3-haiku":             {input: 0.25, output: 1.25},
	"google/gemini-flash-1.5":              {input: 0.075, output: 0.30},
	"google/gemini-pro-1.5":                {input: 1.25, output: 5.0},
	"meta-llama/llama-3.1-70b-instruct":    {input: 0.35, output: 0.40},
	"meta-llama/llama-3.1-405b-instruct":   {input: 2.0, output: 2.0},
	"openai/gpt-4o":                        {input: 2.5, output: 10.0},
	"openai/gpt-4o-mini":                   {input: 0.15, output: 0.60},
}

// CostFor estimates the USD cost of one call from its token counts.
func CostFor(model string, inputTokens, outputTokens int) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1e6*p.input + float64(outputTokens)/1e6*p.output
}
