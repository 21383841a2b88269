package quant

import (
	"time"

	"github.com/google/uuid"
)

// Meta describes a stored or transmitted record.
type Meta struct {
	ID       uuid.UUID  `json:"id"`
	Type     string     `json:"type,omitempty"`
	Schema   string     `json:"schema,omitempty"`
	Version  string     `json:"version,omitempty"`
	Created  *time.Time `json:"createdAt,omitempty"`
	Features []string   `json:"features,omitempty"`
	Sig      any        `json:"sig,omitempty"`
}

// Envelope wraps a value with its Meta. Body is usually a Value or a list of them.
type Envelope struct {
	Meta Meta `json:"$meta"`
	Body any  `json:"$body"`
}

// NewEnvelope stamps body with a fresh id and the current time. typ names the kind
// of body ("quantity", "temperature", "log", "batch").
func NewEnvelope(typ string, body any) Envelope {
	now := time.Now().UTC()
	return Envelope{Meta: Meta{ID: uuid.New(), Type: typ, Created: &now}, Body: body}
}

func (m Meta) object() map[string]any {
	obj := map[string]any{"id": m.ID}
	if m.Type != "" {
		obj["type"] = m.Type
	}
	if m.Schema != "" {
		obj["schema"] = m.Schema
	}
	if m.Version != "" {
		obj["version"] = m.Version
	}
	if m.Created != nil {
		obj["createdAt"] = *m.Created
	}
	if len(m.Features) > 0 {
		fs := make([]any, len(m.Features))
		for i, f := range m.Features {
			fs[i] = f
		}
		obj["features"] = fs
	}
	if m.Sig != nil {
		obj["sig"] = m.Sig
	}
	return obj
}

func metaFromObject(obj map[string]any) Meta {
	var m Meta
	m.ID, _ = obj["id"].(uuid.UUID)
	m.Type, _ = obj["type"].(string)
	m.Schema, _ = obj["schema"].(string)
	m.Version, _ = obj["version"].(string)
	if t, ok := obj["createdAt"].(time.Time); ok {
		m.Created = &t
	}
	if fs, ok := obj["features"].([]any); ok {
		for _, f := range fs {
			if s, ok := f.(string); ok {
				m.Features = append(m.Features, s)
			}
		}
	}
	m.Sig = obj["sig"]
	return m
}
