package state

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/swarmstate/pkg/registry"
)

// Message is the rich object stored in message-like fields. On disk it is the
// {type, content, metadata} envelope; in memory writers work with this struct.
type Message struct {
	Type     string         `json:"type"`
	Content  any            `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (m Message) clone() Message {
	out := Message{Type: m.Type, Content: CloneValue(m.Content)}
	if m.Metadata != nil {
		out.Metadata = CloneValue(m.Metadata).(map[string]any)
	}
	return out
}

// Envelope converts the message to its serialized map form. It also lets a
// Message pass through mapping-based reducers as a plain entry.
func (m Message) Envelope() map[string]any {
	env := map[string]any{
		"type":    m.Type,
		"content": m.Content,
	}
	if len(m.Metadata) > 0 {
		env["metadata"] = m.Metadata
	}
	return env
}

// messageFields are the fields whose entries are (de)serialized through the
// message envelope.
var messageFields = map[string]bool{
	"messages": true,
}

// Serialize encodes a state to its JSON checkpoint document. Message values
// in message-like fields are wrapped in their envelope first; everything else
// is already JSON-shaped.
func Serialize(s State) ([]byte, error) {
	doc := s.Clone()
	for field := range messageFields {
		items, ok := doc[field].([]any)
		if !ok {
			continue
		}
		for i, item := range items {
			switch msg := item.(type) {
			case Message:
				items[i] = msg.Envelope()
			case *Message:
				items[i] = msg.Envelope()
			}
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return data, nil
}

// Deserialize decodes a JSON checkpoint document back into a State,
// reconstructing Message values from their envelopes. The version field is
// required: a checkpoint without one cannot participate in migration.
func Deserialize(data []byte) (State, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to deserialize state: %w", err)
	}

	if _, ok := doc[registry.VersionField].(string); !ok {
		return nil, fmt.Errorf("checkpoint is missing %s", registry.VersionField)
	}

	s := State(doc)
	for field := range messageFields {
		items, ok := s[field].([]any)
		if !ok {
			continue
		}
		for i, item := range items {
			env, ok := item.(map[string]any)
			if !ok {
				continue
			}
			msgType, hasType := env["type"].(string)
			content, hasContent := env["content"]
			if !hasType || !hasContent {
				continue
			}
			msg := Message{Type: msgType, Content: content}
			if meta, ok := env["metadata"].(map[string]any); ok {
				msg.Metadata = meta
			}
			items[i] = msg
		}
	}

	return s, nil
}
