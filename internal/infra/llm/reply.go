package llm

import (
	"bytes"
	"encoding/json"

	"resource-finder/internal/pkg/errs"

	openai "github.com/sashabaranov/go-openai"
)

var ErrUnexpectedReply = errs.New("unexpected response format from upstream")

// ExtractContent pulls the model text out of a reply body. The body is either a plain
// string (raw text or a JSON string literal) or a chat completion envelope.
func ExtractContent(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", errs.Wrap(ErrUnexpectedReply, "empty body")
	}

	if !json.Valid(trimmed) {
		return string(body), nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", errs.Wrap(err, "decode string reply")
		}
		return s, nil
	}

	var envelope openai.ChatCompletionResponse
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", errs.Wrapf(ErrUnexpectedReply, "decode chat completion: %v", err)
	}
	if len(envelope.Choices) == 0 {
		return "", errs.Wrap(ErrUnexpectedReply, "no choices")
	}

	msg := envelope.Choices[0].Message
	if msg.Content != "" {
		return msg.Content, nil
	}
	var buf bytes.Buffer
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			buf.WriteString(part.Text)
		}
	}
	if buf.Len() == 0 {
		return "", errs.Wrap(ErrUnexpectedReply, "empty message content")
	}
	return buf.String(), nil
}
