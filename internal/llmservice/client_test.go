package llmservice

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/models"
)

type fakeModel struct {
	response *llms.ContentResponse
	err      error
	calls    int
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not used")
}

func testLLMConfig() *config.LLMConfig {
	return &config.LLMConfig{Temperature: 0.7, MaxTokens: 100, TimeoutSecs: 5}
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "hello"}, {Content: "ignored"}},
	}}
	c := NewWithModel(model, testLLMConfig())

	got, err := c.Generate(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "hi"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected first choice, got %q", got)
	}
}

func TestGenerate_FailureIsRetryableAndSingleAttempt(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limit")}
	c := NewWithModel(model, testLLMConfig())

	_, err := c.Generate(context.Background(), nil)
	if models.KindOf(err) != models.KindGeneration {
		t.Fatalf("expected generation error, got %v", err)
	}
	if !models.IsRetryable(err) {
		t.Fatal("llm failures must surface as retryable")
	}
	if model.calls != 1 {
		t.Fatalf("the client must not retry on its own, got %d calls", model.calls)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{}}
	c := NewWithModel(model, testLLMConfig())

	_, err := c.Generate(context.Background(), nil)
	if models.KindOf(err) != models.KindGeneration {
		t.Fatalf("expected generation error for empty response, got %v", err)
	}
}
