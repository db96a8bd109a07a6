package server

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

const judgeSystemPrompt = "You are the merciless judge of a cat picture caption contest. " +
	"Score the caption for humour (0-10) and relevance to the image (0-10) and add one short roast comment. " +
	"Respond with a JSON object: {\"humour\": <int>, \"relevance\": <int>, \"comment\": \"<string>\"}."

type openAIJudge struct {
	apiKey string
	model  string
	client *http.Client
}

func newOpenAIJudge(apiKey, model string) *openAIJudge {
	return &openAIJudge{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type judgeVerdict struct {
	Humour    int    `json:"humour"`
	Relevance int    `json:"relevance"`
	Comment   string `json:"comment"`
}

func (j *openAIJudge) Score(ctx context.Context, imageURL, caption string) (Score, error) {
	if strings.TrimSpace(j.apiKey) == "" {
		return Score{}, &Error{Kind: errJudgeUnavailable, Message: "judge is not configured"}
	}
	userPrompt := fmt.Sprintf("Image: %s\nCaption: %q", imageURL, caption)
	reqBody := openAIChatRequest{
		Model: j.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: judgeSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Score{}, fmt.Errorf("failed to build judge request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Score{}, fmt.Errorf("failed to build judge request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(j.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return Score{}, fmt.Errorf("failed to reach judge")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Score{}, fmt.Errorf("failed to read judge response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Score{}, fmt.Errorf("judge request failed (%d)", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Score{}, fmt.Errorf("failed to parse judge response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return Score{}, fmt.Errorf("judge error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Score{}, errors.New("judge returned no verdict")
	}
	verdict, err := parseVerdict(parsed.Choices[0].Message.Content)
	if err != nil {
		return Score{}, err
	}
	return Score{
		Humour:    verdict.Humour,
		Relevance: verdict.Relevance,
		Comment:   strings.TrimSpace(verdict.Comment),
	}, nil
}

// parseVerdict tolerates prose around the JSON object, which chat models
// produce even when told not to.
func parseVerdict(raw string) (judgeVerdict, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return judgeVerdict{}, errors.New("judge verdict is not in the expected format")
	}
	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &verdict); err != nil {
		return judgeVerdict{}, errors.New("judge verdict is not in the expected format")
	}
	return verdict, nil
}
