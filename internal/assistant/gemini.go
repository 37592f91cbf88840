package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// The model is instructed to answer with raw JSON matching the Listing
// schema. Responses still arrive code-fenced often enough that parsing
// strips fences first.
const instruction = `You are a product listing assistant for an online marketplace.
Your job is to analyze an image of a product and generate structured data.
Respond ONLY with raw JSON (no markdown, no code block).
The JSON must strictly follow this schema:
{
  "name": string,
  "description": string
}`

var (
	// ErrUnavailable means the upstream call itself failed; callers may retry
	ErrUnavailable = errors.New("assistant request failed")
	// ErrMalformedResponse means the model answered but the text was
	// unparseable; retrying with the same image will not help
	ErrMalformedResponse = errors.New("assistant response is not valid JSON")
)

// Listing is the structured extraction result
type Listing struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client calls the generative model's REST endpoint
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient creates a new generative model client
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
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

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExtractListing sends the image with the fixed instruction and parses the
// model's text output into a Listing.
func (c *Client) ExtractListing(ctx context.Context, base64Image, mimeType string) (*Listing, error) {
	reqBody := generateRequest{
		Contents: []content{
			{
				Parts: []part{
					{Text: instruction},
					{InlineData: &inlineData{MimeType: mimeType, Data: base64Image}},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.DeadlineExceeded
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		// The provider's error body is for server logs, not clients
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, body)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrMalformedResponse)
	}

	raw := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	cleaned := stripCodeFences(raw)

	var listing Listing
	if err := json.Unmarshal([]byte(cleaned), &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if listing.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformedResponse)
	}
	return &listing, nil
}

// stripCodeFences removes ```json / ``` markers the model sometimes wraps
// its output in despite the instruction.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
