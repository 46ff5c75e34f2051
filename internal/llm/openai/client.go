package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
	"github.com/joseph-ayodele/portfolio-grader/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Temperature    float32           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
	Messages       []chatMessage     `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// buildChatRequest assembles the vision request: the fixed system contract, then one
// user turn with the instruction text and the inlined image.
func (c *Client) buildChatRequest(req llm.ExtractRequest) chatRequest {
	return chatRequest{
		Model:          c.cfg.Model,
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: llm.BuildUserPrompt(req)},
				{Type: "image_url", ImageURL: &imageURL{URL: llm.ImageDataURL(req.ImageData, req.MimeType, req.FilenameHint)}},
			}},
		},
	}
}

// ExtractFields implements llm.FieldExtractor with a single vision chat/completions call.
// No retries; a malformed answer is an error like any other.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.InvestmentRecord, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	log := common.LoggerFromContext(ctx, c.log).With(zap.String("req_id", rid))
	start := time.Now()

	log.Info("llm.extract.start",
		zap.String("model", c.cfg.Model),
		zap.Float32("temp", c.cfg.Temperature),
		zap.Int("max_tokens", c.cfg.MaxTokens),
		zap.Int("image_bytes", len(req.ImageData)),
		zap.String("mime_type", req.MimeType),
	)

	if len(req.ImageData) == 0 {
		return llm.InvestmentRecord{}, nil, common.NewAppError(common.CodeExtract, "empty image", common.ErrInvalidInput)
	}

	body := c.buildChatRequest(req)
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, c.cfg.BaseURL+"/chat/completions", body, headers, log)
	if httpErr != nil {
		log.Error("llm.extract.http_error",
			zap.Error(httpErr),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		var se *llm.StatusError
		if errors.As(httpErr, &se) {
			return llm.InvestmentRecord{}, raw, fmt.Errorf("openai status %d: %w", se.StatusCode, httpErr)
		}
		return llm.InvestmentRecord{}, nil, fmt.Errorf("openai http error: %w", httpErr)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		log.Error("llm.extract.decode_error",
			zap.Error(err), zap.Int("raw_bytes", len(raw)),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return llm.InvestmentRecord{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		log.Error("llm.extract.no_choices",
			zap.String("raw", string(raw)),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return llm.InvestmentRecord{}, raw, fmt.Errorf("no choices in openai response: %w", common.ErrMalformed)
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	out, normalized, err := llm.ParseRecord(content, log)
	if err != nil {
		log.Error("llm.extract.parse_failed",
			zap.Error(err), zap.String("content", string(content)),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return llm.InvestmentRecord{}, content, err
	}

	log.Info("llm.extract.ok",
		zap.String("name", out.Name),
		zap.String("ticker", out.Ticker),
		zap.String("grade", out.Grade),
		zap.Stringer("risk_score", out.RiskScore),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return out, normalized, nil
}
