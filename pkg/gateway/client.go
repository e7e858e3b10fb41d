package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pathlight/go-pathlight/internal/httpc"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Part is one element of a multimodal request.
type Part struct {
	Text string

	// InlineData carries an image or audio payload.
	InlineData []byte
	MIMEType   string
}

// ContentRequest describes one generateContent call.
type ContentRequest struct {
	System             string
	Parts              []Part
	Temperature        float64
	MaxOutputTokens    int
	ResponseMIMEType   string
	ResponseModalities []string
	SpeechVoice        string
}

// Reply is the decoded model output: text, or an inline payload for
// audio responses.
type Reply struct {
	Text       string
	InlineData []byte
	MIMEType   string
}

// Caller issues a single model invocation. The Gateway layers its
// fallback policy on top of this.
type Caller interface {
	GenerateContent(ctx context.Context, model string, req *ContentRequest) (*Reply, error)
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Gemini REST client.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		http:    httpc.Client,
	}, nil
}

// geminiResponse is the response structure from the Gemini API.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData struct {
					MIMEType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// GenerateContent invokes the model once and decodes the first candidate.
func (c *Client) GenerateContent(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
	parts := make([]map[string]interface{}, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.InlineData != nil {
			parts = append(parts, map[string]interface{}{
				"inline_data": map[string]string{
					"mime_type": p.MIMEType,
					"data":      base64.StdEncoding.EncodeToString(p.InlineData),
				},
			})
			continue
		}
		parts = append(parts, map[string]interface{}{"text": p.Text})
	}

	genCfg := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxOutputTokens > 0 {
		genCfg["maxOutputTokens"] = req.MaxOutputTokens
	}
	if req.ResponseMIMEType != "" {
		genCfg["responseMimeType"] = req.ResponseMIMEType
	}
	if len(req.ResponseModalities) > 0 {
		genCfg["responseModalities"] = req.ResponseModalities
	}
	if req.SpeechVoice != "" {
		genCfg["speechConfig"] = map[string]interface{}{
			"voiceConfig": map[string]interface{}{
				"prebuiltVoiceConfig": map[string]string{"voiceName": req.SpeechVoice},
			},
		}
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": genCfg,
	}
	if req.System != "" {
		payload["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": req.System},
			},
		}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Model: model}
		var errResp geminiResponse
		if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error.Message != "" {
			apiErr.Message = errResp.Error.Message
		} else {
			apiErr.Message = truncate(string(bodyBytes), 200)
		}
		return nil, apiErr
	}

	var result geminiResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w (body: %s)", err, truncate(string(bodyBytes), 200))
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	reply := &Reply{}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" && reply.Text == "" {
			reply.Text = part.Text
		}
		if part.InlineData.Data != "" && reply.InlineData == nil {
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("gateway: decode inline data: %w", err)
			}
			reply.InlineData = data
			reply.MIMEType = part.InlineData.MIMEType
		}
	}

	if reply.Text == "" && reply.InlineData == nil {
		return nil, ErrEmptyResponse
	}

	return reply, nil
}

// truncate shortens a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
