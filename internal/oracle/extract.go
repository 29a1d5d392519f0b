package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Extraction is the structured result of a value-extraction turn.
type Extraction struct {
	Message           string `json:"message"`
	ExtractedValue    string `json:"extractedValue"`
	NeedsConfirmation bool   `json:"needsConfirmation"`
}

// extractionTemperature leaves the conversational reply some latitude; the
// detection path uses temperature 0 instead.
const extractionTemperature = 0.7

const extractionPromptTemplate = `You are helping fill in a legal document placeholder.
Current placeholder: %q
Description: %s

Your job:
1. Understand the user's natural language response
2. Extract the exact value to fill in the placeholder
3. Respond conversationally while confirming the value
4. Format the value appropriately (e.g., dates, currency, proper names)
5. Do NOT use asterisks (**) or emojis in your responses
6. For currency amounts, do NOT add dollar signs ($) if the placeholder already contains them
7. Keep responses clean and professional without special formatting and without any emojis.

Respond in this JSON format:
{
  "message": "your conversational response without asterisks or emojis",
  "extractedValue": "the formatted value to use",
  "needsConfirmation": true/false
}`

// ExtractValue asks the oracle to pull a fill value out of a conversational
// user utterance. Transport failures are terminal (there is no deterministic
// substitute for understanding free text); a completion that is not valid
// JSON degrades to treating the raw utterance as the value.
func (c *Client) ExtractValue(ctx context.Context, original, description string, history []Message, utterance string) (*Extraction, error) {
	system := fmt.Sprintf(extractionPromptTemplate, original, description)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: utterance})

	completion, err := c.Complete(ctx, messages, extractionTemperature)
	if err != nil {
		return nil, err
	}

	return ParseExtraction(completion, utterance), nil
}

// ParseExtraction decodes an extraction completion. When the completion is
// not the requested JSON object, the raw completion becomes the assistant
// message and the raw utterance becomes the extracted value.
func ParseExtraction(completion, utterance string) *Extraction {
	var ex Extraction
	if err := json.Unmarshal([]byte(strings.TrimSpace(completion)), &ex); err == nil {
		return &ex
	}

	return &Extraction{
		Message:           completion,
		ExtractedValue:    utterance,
		NeedsConfirmation: false,
	}
}
