package scorecard

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// extractionPrompt is the fixed instruction template sent with every image.
const extractionPrompt = `You are reading a golf scorecard photograph. Respond with JSON only,
no prose, matching exactly this shape:
{
  "round_details": {"course_name": "", "date_of_round": "YYYY-MM-DD", "course_rating": 0.0, "slope_rating": 0.0, "total_adj_gross": 0},
  "grounded_info": {"course_type": "", "location": "", "weather_conditions": ""},
  "hole_data": [{"hole": 1, "par": 0, "distance": 0, "strokes": 0}]
}
hole_data must contain all 18 holes in order. Use 0 for anything unreadable.`

const geminiModel = "gemini-1.5-flash"

type GeminiExtractorConfig struct {
	BaseURL string // e.g. https://generativelanguage.googleapis.com
	APIKey  string
}

type geminiExtractor struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGeminiExtractor(cfg GeminiExtractorConfig) Extractor {
	return &geminiExtractor{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (e *geminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*ExtractedScorecard, error) {
	if e.apiKey == "" {
		return nil, errors.New("vision API key is not configured")
	}
	if len(image) == 0 {
		return nil, errors.New("image is empty")
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: extractionPrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", e.baseURL, geminiModel, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("vision response contained no candidates")
	}

	text := stripCodeFences(out.Candidates[0].Content.Parts[0].Text)

	var card ExtractedScorecard
	if err := json.Unmarshal([]byte(text), &card); err != nil {
		return nil, fmt.Errorf("vision response is not valid scorecard JSON: %w", err)
	}
	return &card, nil
}

// stripCodeFences removes a surrounding markdown code fence, which the model
// tends to wrap JSON answers in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
