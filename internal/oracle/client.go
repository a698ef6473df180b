package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Phase tags which proof the rider is capturing during metro/bus check-in.
type Phase string

const (
	PhaseTicket  Phase = "TICKET"
	PhaseStation Phase = "STATION"
)

const geminiModel = "gemini-2.5-flash"

// Degraded-mode responses. Verification never blocks on the oracle: a
// missing key or a failed call resolves to these fixed values.
const (
	mockVerifyReasoning     = "Verified (Mock Mode)"
	degradedVerifyReasoning = "AI Service busy, manual verification logged."
	mockTip                 = "Great job saving CO2! Keep it up."
	degradedTip             = "Every step counts towards a cleaner Delhi!"
)

type Verdict struct {
	IsValid   bool   `json:"isValid"`
	Reasoning string `json:"reasoning"`
}

// Client talks to the Gemini generateContent endpoint. With an empty API key
// it runs in degraded mode and returns deterministic mock responses.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Degraded reports whether the client has no credential and will only ever
// return mock responses.
func (c *Client) Degraded() bool {
	return c.apiKey == ""
}

// VerifyImage asks the model whether the captured frame is a valid ticket or
// a public transport environment, depending on phase.
func (c *Client) VerifyImage(ctx context.Context, imageB64 string, phase Phase) Verdict {
	if c.Degraded() {
		return Verdict{IsValid: true, Reasoning: mockVerifyReasoning}
	}

	now := time.Now()
	var prompt string
	if phase == PhaseTicket {
		prompt = fmt.Sprintf(`Analyze this image. Is it a public transport ticket (Metro, Bus, or Train) or a digital ticket on a phone screen?
1. Check if it is a ticket.
2. Look for the DATE: It must match today's date: %s (allow standard variations).
3. Look for the TIME: It must be reasonably close to now: %s (within 4 hours).
Return a JSON object with 'isValid' (boolean) and 'reasoning' (short string).
If date/time is clearly visible and wrong, return isValid: false. If valid date/time found, return true.`,
			now.Format("02/01/2006"), now.Format("15:04"))
	} else {
		prompt = `Analyze this image. Is it a photo taken inside a bus, metro, train station, or on a platform?
It must clearly look like a public transport environment (seats, handles, turnstiles, platform edge, crowds, station signage).
Return a JSON object with 'isValid' (boolean) and 'reasoning' (short string).`
	}

	text, err := c.generate(ctx, imageB64, prompt, true)
	if err != nil {
		log.Printf("oracle: image verification failed: %v", err)
		return Verdict{IsValid: true, Reasoning: degradedVerifyReasoning}
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		log.Printf("oracle: verdict parse failed: %v", err)
		return Verdict{IsValid: true, Reasoning: degradedVerifyReasoning}
	}
	return verdict
}

// TripTip returns a short encouragement for a finished trip.
func (c *Client) TripTip(ctx context.Context, mode string, distanceKm float64) string {
	if c.Degraded() {
		return mockTip
	}

	prompt := fmt.Sprintf("Give a very short, encouraging eco-tip (max 15 words) for someone who just traveled %.1fkm by %s in Delhi.", distanceKm, mode)
	text, err := c.generate(ctx, "", prompt, false)
	if err != nil || text == "" {
		if err != nil {
			log.Printf("oracle: tip request failed: %v", err)
		}
		return degradedTip
	}
	return text
}

// CheckPlausibility asks whether the claimed mode/distance/time combination
// is physically realistic. Defaults to plausible on any failure.
func (c *Client) CheckPlausibility(ctx context.Context, mode string, distanceKm float64, durationSec int64) bool {
	if c.Degraded() {
		return true
	}

	speedKmh := 0.0
	if durationSec > 0 {
		speedKmh = distanceKm / (float64(durationSec) / 3600)
	}
	prompt := fmt.Sprintf(`Analyze: User claims to travel by %s. Distance: %.2fkm. Time: %d seconds. Calc speed: %.2f km/h. Is this physically possible and realistic? Return JSON { "possible": boolean }.`,
		mode, distanceKm, durationSec, speedKmh)

	text, err := c.generate(ctx, "", prompt, true)
	if err != nil {
		log.Printf("oracle: plausibility check failed: %v", err)
		return true
	}

	var result struct {
		Possible *bool `json:"possible"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil || result.Possible == nil {
		return true
	}
	return *result.Possible
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, imageB64, prompt string, jsonResponse bool) (string, error) {
	var parts []part
	if imageB64 != "" {
		parts = append(parts, part{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageB64}})
	}
	parts = append(parts, part{Text: prompt})

	reqBody := generateRequest{Contents: []content{{Parts: parts}}}
	if jsonResponse {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (%d): %s", resp.StatusCode, string(body))
	}

	var data generateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", err
	}
	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}
	return data.Candidates[0].Content.Parts[0].Text, nil
}
