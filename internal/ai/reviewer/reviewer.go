package reviewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"

	"github.com/careerlens/careerlens/analysis"
)

// Sentinel errors for remote failures the caller may want to classify.
var (
	ErrEmptyResponse     = errors.New("no response from openai")
	ErrMalformedResponse = errors.New("malformed response from openai")
	ErrModelRefusal      = errors.New("model declined to analyze the input")
)

const defaultModel = "gpt-4o-mini"

// Reviewer scores a resume against a job description using OpenAI chat
// completions. Implements analysis.RemoteReviewer.
type Reviewer struct {
	client *openai.Client
	model  string
}

// NewReviewer creates a reviewer. An empty model selects the default.
func NewReviewer(apiKey, model string) *Reviewer {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	if model == "" {
		model = defaultModel
	}

	return &Reviewer{
		client: &client,
		model:  model,
	}
}

const systemPrompt = `You are an expert resume reviewer and career coach. You evaluate resumes against job descriptions and return ONLY valid JSON.`

// remotePayload mirrors the JSON shape requested in the prompt. A populated
// Error field means the model declined to analyze the input.
type remotePayload struct {
	Error string `json:"error,omitempty"`

	AlignmentScore  int      `json:"alignment_score"`
	Verdict         bool     `json:"verdict"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`

	StarAnalysis []analysis.STARRewrite `json:"star_analysis"`

	CoverLetter *analysis.CoverLetterAnalysis `json:"cover_letter_analysis,omitempty"`
}

// Review sends the resume and job description for scoring and returns the
// parsed report. The returned report is raw model output; normalization is
// the caller's concern.
func (r *Reviewer) Review(ctx context.Context, req analysis.RemoteRequest) (*analysis.Report, error) {
	userPrompt := buildUserPrompt(req)

	completion, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: r.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(4000),
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	content := stripCodeFences(completion.Choices[0].Message.Content)
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	var payload remotePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrModelRefusal, payload.Error)
	}

	return &analysis.Report{
		AlignmentScore:  payload.AlignmentScore,
		Verdict:         payload.Verdict,
		Strengths:       payload.Strengths,
		Weaknesses:      payload.Weaknesses,
		Recommendations: payload.Recommendations,
		StarAnalysis:    payload.StarAnalysis,
		CoverLetter:     payload.CoverLetter,
	}, nil
}

func buildUserPrompt(req analysis.RemoteRequest) string {
	var sb strings.Builder

	sb.WriteString(`Evaluate this resume against the job description and return JSON in exactly this structure:

{
  "alignment_score": number (0-100),
  "verdict": boolean (true if the candidate is a strong fit),
  "strengths": string[] (3-5 specific strengths),
  "weaknesses": string[] (3-5 specific gaps or weaknesses),
  "recommendations": string[] (3-5 actionable improvements),
  "star_analysis": [{
    "original": string (a bullet taken verbatim from the resume),
    "improved": string (the bullet rewritten in STAR style with metrics),
    "feedback": string (one sentence explaining the change)
  }] (exactly 3 entries)`)

	if req.CoverLetterText != "" {
		sb.WriteString(`,
  "cover_letter_analysis": {
    "tone": string (e.g. "professional", "enthusiastic", "formal"),
    "relevance": number (0-100),
    "strengths": string[],
    "weaknesses": string[],
    "recommendations": string[],
    "company_insights": string (what the letter reveals about company fit),
    "key_requirements": string[] (job requirements the letter should address),
    "suggested_phrases": string[] (phrases worth adding)
  }`)
	}

	sb.WriteString(`
}

If the input is not a resume and job description, return {"error": "reason"}.

JOB DESCRIPTION:
`)
	sb.WriteString(req.JobDescription)

	if req.CompanyName != "" {
		sb.WriteString("\n\nCOMPANY: ")
		sb.WriteString(req.CompanyName)
	}

	sb.WriteString("\n\nRESUME:\n")
	sb.WriteString(req.ResumeText)

	if req.CoverLetterText != "" {
		sb.WriteString("\n\nCOVER LETTER:\n")
		sb.WriteString(req.CoverLetterText)
	}

	return sb.String()
}

// stripCodeFences tolerates models that wrap JSON in markdown fences despite
// the response format setting.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
