package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client wraps the OpenAI SDK and provides utility helpers.
type Client struct {
	apiKey string
	client *openai.Client
	model  openai.ChatModel
}

var (
	// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
	ErrClientNotInitialised = errors.New("openai client not initialised")
	// ErrNoTime is returned when the model finds no time in the expression.
	ErrNoTime = errors.New("openai: no time in expression")
)

const noTimeAnswer = "none"

// New returns an OpenAI client. Without an apiKey the client is inert and
// every call returns ErrClientNotInitialised.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		apiKey: apiKey,
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// ResolveTime asks the model to turn a time expression into an absolute instant.
func (c *Client) ResolveTime(ctx context.Context, text string, now time.Time, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, fmt.Errorf("content cannot be empty")
	}
	if !c.Enabled() {
		return time.Time{}, ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt(now, loc)),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(text),
					},
				},
			},
		},
		Temperature:         openai.Float(0.0),
		MaxCompletionTokens: openai.Int(40),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return time.Time{}, err
	}
	if len(resp.Choices) == 0 {
		return time.Time{}, fmt.Errorf("no completion received")
	}
	return parseAnswer(resp.Choices[0].Message.Content)
}

func systemPrompt(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf(
		"You convert time expressions for a reminder bot into timestamps. "+
			"The current time is %s in timezone %s. Prefer future dates. "+
			"Reply with exactly one RFC3339 timestamp including the offset, or %q if the text contains no time.",
		now.In(loc).Format(time.RFC3339), loc.String(), noTimeAnswer)
}

func parseAnswer(answer string) (time.Time, error) {
	answer = strings.Trim(strings.TrimSpace(answer), "`\"")
	if strings.EqualFold(answer, noTimeAnswer) || answer == "" {
		return time.Time{}, ErrNoTime
	}
	resolved, err := time.Parse(time.RFC3339, answer)
	if err != nil {
		return time.Time{}, fmt.Errorf("openai: unexpected answer %q: %w", answer, err)
	}
	return resolved, nil
}
