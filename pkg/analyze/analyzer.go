package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/sourceinfo/sourceinfo/internal/store"
)

const analysisPrompt = `You are an expert media analyst. Analyze the following news article for quality, bias, and reliability.

ARTICLE CONTENT:
%s

Provide a structured analysis in the following JSON format:

{
  "summary": "2-3 sentence summary of what the article is about",

  "inflammatory_language": {
    "score": <1-10, where 1=neutral/factual, 10=highly inflammatory>,
    "examples": ["list of specific inflammatory phrases found"],
    "explanation": "brief explanation of the inflammatory language used"
  },

  "unsupported_claims": {
    "score": <1-10, where 1=well-sourced, 10=many unsupported claims>,
    "claims": [
      {
        "claim": "the specific claim made",
        "issue": "why it's unsupported (no source, vague attribution, etc.)"
      }
    ],
    "explanation": "overall assessment of sourcing quality"
  },

  "emotional_manipulation": {
    "score": <1-10, where 1=objective, 10=highly manipulative>,
    "techniques": ["list of manipulation techniques detected"],
    "explanation": "how the article attempts to influence reader emotions"
  },

  "factual_reporting": {
    "score": <1-10, where 1=opinion/speculation, 10=factual reporting>,
    "strengths": ["what the article does well factually"],
    "weaknesses": ["factual issues or gaps"]
  },

  "bias_indicators": {
    "detected_lean": "<Left|Lean Left|Center|Lean Right|Right|Unknown>",
    "indicators": ["specific phrases or framing that indicate bias"],
    "explanation": "assessment of political or ideological bias"
  },

  "overall_quality": {
    "score": <1-100, overall quality/reliability score>,
    "grade": "<A|B|C|D|F>",
    "recommendation": "brief recommendation for readers"
  }
}

Return ONLY valid JSON, no additional text or markdown formatting.`

// Scores are the numeric verdicts from one article analysis. All are 1-10
// except OverallQuality, which is 1-100.
type Scores struct {
	InflammatoryLanguage  int    `json:"inflammatory_language"`
	UnsupportedClaims     int    `json:"unsupported_claims"`
	EmotionalManipulation int    `json:"emotional_manipulation"`
	FactualReporting      int    `json:"factual_reporting"`
	OverallQuality        int    `json:"overall_quality"`
	OverallGrade          string `json:"overall_grade"`
}

// Claim is one flagged unsupported claim.
type Claim struct {
	Claim string `json:"claim"`
	Issue string `json:"issue"`
}

// Result is the full analysis of one article.
type Result struct {
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
	Scores  Scores `json:"scores"`

	InflammatoryExamples    []string `json:"inflammatory_examples,omitempty"`
	InflammatoryExplanation string   `json:"inflammatory_explanation,omitempty"`

	UnsupportedClaims []Claim `json:"unsupported_claims,omitempty"`
	ClaimsExplanation string  `json:"claims_explanation,omitempty"`

	ManipulationTechniques  []string `json:"manipulation_techniques,omitempty"`
	ManipulationExplanation string   `json:"manipulation_explanation,omitempty"`

	FactualStrengths  []string `json:"factual_strengths,omitempty"`
	FactualWeaknesses []string `json:"factual_weaknesses,omitempty"`

	DetectedBias    string   `json:"detected_bias,omitempty"`
	BiasIndicators  []string `json:"bias_indicators,omitempty"`
	BiasExplanation string   `json:"bias_explanation,omitempty"`

	Recommendation string `json:"recommendation,omitempty"`
	ModelUsed      string `json:"model_used"`
}

// rawAnalysis mirrors the JSON shape the model is asked to return.
type rawAnalysis struct {
	Summary              string `json:"summary"`
	InflammatoryLanguage struct {
		Score       int      `json:"score"`
		Examples    []string `json:"examples"`
		Explanation string   `json:"explanation"`
	} `json:"inflammatory_language"`
	UnsupportedClaims struct {
		Score       int     `json:"score"`
		Claims      []Claim `json:"claims"`
		Explanation string  `json:"explanation"`
	} `json:"unsupported_claims"`
	EmotionalManipulation struct {
		Score       int      `json:"score"`
		Techniques  []string `json:"techniques"`
		Explanation string   `json:"explanation"`
	} `json:"emotional_manipulation"`
	FactualReporting struct {
		Score      int      `json:"score"`
		Strengths  []string `json:"strengths"`
		Weaknesses []string `json:"weaknesses"`
	} `json:"factual_reporting"`
	BiasIndicators struct {
		DetectedLean string   `json:"detected_lean"`
		Indicators   []string `json:"indicators"`
		Explanation  string   `json:"explanation"`
	} `json:"bias_indicators"`
	OverallQuality struct {
		Score          int    `json:"score"`
		Grade          string `json:"grade"`
		Recommendation string `json:"recommendation"`
	} `json:"overall_quality"`
}

// UsageRecorder receives one log entry per external API call.
type UsageRecorder interface {
	LogUsage(ctx context.Context, entry *store.UsageEntry) error
}

// Analyzer grades article text through an OpenAI-compatible chat API.
type Analyzer struct {
	client   *openai.Client
	model    string
	maxChars int
	limiter  *rate.Limiter
	usage    UsageRecorder
}

// NewAnalyzer creates an analyzer. baseURL points at an OpenAI-compatible
// endpoint (OpenRouter in production). ratePerMin bounds outbound calls;
// usage may be nil to disable cost logging.
func NewAnalyzer(apiKey, baseURL, model string, maxChars, ratePerMin int, usage UsageRecorder) *Analyzer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxChars <= 0 {
		maxChars = 15000
	}
	if ratePerMin <= 0 {
		ratePerMin = 10
	}
	return &Analyzer{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		maxChars: maxChars,
		limiter:  rate.NewLimiter(rate.Limit(float64(ratePerMin)/60), ratePerMin),
		usage:    usage,
	}
}

// Model returns the default model.
func (a *Analyzer) Model() string { return a.model }

// Analyze grades the given article content. An empty model uses the default.
func (a *Analyzer) Analyze(ctx context.Context, articleURL, content, model string) (*Result, error) {
	if model == "" {
		model = a.model
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("no content to analyze")
	}

	if len(content) > a.maxChars {
		content = content[:a.maxChars] + "\n\n[Article truncated for analysis...]"
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(analysisPrompt, content)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		a.logUsage(ctx, model, articleURL, 0, 0, false, err.Error())
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		a.logUsage(ctx, model, articleURL, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, false, "empty response")
		return nil, fmt.Errorf("no choices in response")
	}

	a.logUsage(ctx, model, articleURL, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, true, "")

	var raw rawAnalysis
	text := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}

	return &Result{
		URL:     articleURL,
		Summary: raw.Summary,
		Scores: Scores{
			InflammatoryLanguage:  raw.InflammatoryLanguage.Score,
			UnsupportedClaims:     raw.UnsupportedClaims.Score,
			EmotionalManipulation: raw.EmotionalManipulation.Score,
			FactualReporting:      raw.FactualReporting.Score,
			OverallQuality:        raw.OverallQuality.Score,
			OverallGrade:          raw.OverallQuality.Grade,
		},
		InflammatoryExamples:    raw.InflammatoryLanguage.Examples,
		InflammatoryExplanation: raw.InflammatoryLanguage.Explanation,
		UnsupportedClaims:       raw.UnsupportedClaims.Claims,
		ClaimsExplanation:       raw.UnsupportedClaims.Explanation,
		ManipulationTechniques:  raw.EmotionalManipulation.Techniques,
		ManipulationExplanation: raw.EmotionalManipulation.Explanation,
		FactualStrengths:        raw.FactualReporting.Strengths,
		FactualWeaknesses:       raw.FactualReporting.Weaknesses,
		DetectedBias:            raw.BiasIndicators.DetectedLean,
		BiasIndicators:          raw.BiasIndicators.Indicators,
		BiasExplanation:         raw.BiasIndicators.Explanation,
		Recommendation:          raw.OverallQuality.Recommendation,
		ModelUsed:               model,
	}, nil
}

func (a *Analyzer) logUsage(ctx context.Context, model, articleURL string, inTokens, outTokens int, success bool, errMsg string) {
	if a.usage == nil {
		return
	}
	a.usage.LogUsage(ctx, &store.UsageEntry{
		APIName:      "openrouter",
		Endpoint:     "/chat/completions",
		ModelUsed:    model,
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		CostUSD:      CostFor(model, inTokens, outTokens),
		URL:          articleURL,
		Success:      success,
		ErrorMessage: errMsg,
	})
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}
