package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultPersona = `You are the easygoing voice of a small ambient display that lives on a desk.
You keep an eye on the weather and the machine you run on, and you chat with
whoever wanders by. Speak in a relaxed, upbeat register with friendly terms
like "man" and "dude". Keep responses short enough to say comfortably out
loud, roughly one to four sentences, and never use markdown.`

// historyWindow bounds how many exchanges ride along with each request.
const historyWindow = 12

type exchange struct {
	user      string
	assistant string
}

// Conversation carries the persona and a sliding window of exchanges.
type Conversation struct {
	persona string
	window  int
	history []exchange
}

func NewConversation(persona string) *Conversation {
	if persona == "" {
		persona = defaultPersona
	}
	return &Conversation{persona: persona, window: historyWindow}
}

// Remember appends an exchange, dropping the oldest once the window fills.
func (c *Conversation) Remember(user, assistant string) {
	c.history = append(c.history, exchange{user: user, assistant: assistant})
	if len(c.history) > c.window {
		c.history = c.history[len(c.history)-c.window:]
	}
}

func (c *Conversation) messages(input string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(c.history)+2)
	msgs = append(msgs, openai.SystemMessage(c.persona))
	for _, e := range c.history {
		msgs = append(msgs, openai.UserMessage(e.user), openai.AssistantMessage(e.assistant))
	}
	return append(msgs, openai.UserMessage(input))
}

// Generator produces in-persona replies through the chat completions API.
type Generator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewGenerator builds a client. baseURL is optional and supports
// self-hosted OpenAI-compatible gateways; an empty model falls back to
// gpt-5-nano.
func NewGenerator(apiKey, baseURL, model string) *Generator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	chatModel := openai.ChatModel(model)
	if chatModel == "" {
		chatModel = openai.ChatModelGPT5Nano
	}
	return &Generator{
		client: openai.NewClient(opts...),
		model:  chatModel,
	}
}

// Reply answers input, records the exchange, and returns the stylized
// text ready to print or speak.
func (g *Generator) Reply(ctx context.Context, conv *Conversation, input string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: conv.messages(input),
		Model:    g.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}

	reply := Stylize(content)
	conv.Remember(input, reply)
	return reply, nil
}

// Stylize adds a little extra flavor without overdoing it.
func Stylize(reply string) string {
	if reply == "" {
		return reply
	}
	trimmed := strings.TrimRight(reply, " .!?")
	lower := strings.ToLower(trimmed)
	for _, ending := range []string{"man", "dude", "vato", "bro"} {
		if strings.HasSuffix(lower, ending) {
			return reply
		}
	}
	return trimmed + ", man."
}
