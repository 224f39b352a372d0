package translate

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You translate website copy for a physiotherapy practice.
You receive a JSON object {"lang": "<target language code>", "items": [<strings>]}.
Translate every string into the target language and reply with a JSON object {"items": [<strings>]}.
Rules:
- Return exactly as many items as you received, in the same order.
- Never merge, split, drop or reorder items.
- Keep placeholders, URLs, e-mail addresses, numbers and brand names verbatim.
- Reply with the JSON object only.`

type batchPayload struct {
	Lang  string   `json:"lang"`
	Items []string `json:"items"`
}

type batchReply struct {
	Items []string `json:"items"`
}

func userPrompt(lang string, texts []string) (string, error) {
	body, err := json.Marshal(batchPayload{Lang: lang, Items: texts})
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}
	return string(body), nil
}

// parseReply decodes a provider reply and checks it against want items.
// Code fences around the JSON are tolerated.
func parseReply(content string, want int) ([]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply batchReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return nil, fmt.Errorf("decode translation reply: %w", err)
	}
	if reply.Items == nil || len(reply.Items) != want {
		return nil, fmt.Errorf("%w: got %d items, want %d", ErrShapeMismatch, len(reply.Items), want)
	}
	return reply.Items, nil
}
