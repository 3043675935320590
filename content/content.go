package content

import (
	"context"
	"errors"
	"strings"
)

const (
	// MaxTitleLength caps titles persisted onto content objects.
	MaxTitleLength = 100
	// MaxKeywords caps how many keywords a content object carries.
	MaxKeywords = 10
	// MaxKeywordLength caps each individual keyword.
	MaxKeywordLength = 32
)

// ErrRejected is returned when observation results fail the acceptance gate.
var ErrRejected = errors.New("content rejected by policy gate")

// Object is an opaque content record in the external persistence layer.
type Object struct {
	PublisherID string
	Name        string
	Type        string
	Title       string
	Content     string
	Attributes  map[string]any
}

// SetAttribute sets one attribute, allocating the map on first use.
func (o *Object) SetAttribute(key string, value any) {
	if o.Attributes == nil {
		o.Attributes = make(map[string]any)
	}
	o.Attributes[key] = value
}

// Store is the persistence collaborator. The implementation is owned by the
// host application; this layer only creates, fetches, and saves.
type Store interface {
	Create(ctx context.Context, obj *Object) error
	FetchOne(ctx context.Context, publisherID, name string) (*Object, error)
	Save(ctx context.Context, obj *Object) error
}

// Accept applies the policy gate to raw observation results. Content is
// rejected when the model scored it obscene above 3 or controversial above
// 5, or when a reported confidence falls below 0.6. A missing confidence
// field does not reject on its own.
func Accept(results map[string]any) bool {
	if number(results, "obscene") > 3 {
		return false
	}
	if number(results, "controversial") > 5 {
		return false
	}
	if confidence, ok := lookupNumber(results, "confidence"); ok && confidence < 0.6 {
		return false
	}
	return true
}

// AttributesFromObservations shapes raw observation results into the
// attributes persisted onto a content object: the title is truncated to
// MaxTitleLength, keywords are trimmed, lowercased, capped at
// MaxKeywordLength each and MaxKeywords total. Fields outside the allowlist
// are dropped.
func AttributesFromObservations(results map[string]any) map[string]any {
	attrs := make(map[string]any)

	if title, ok := results["title"].(string); ok && title != "" {
		attrs["title"] = truncate(strings.TrimSpace(title), MaxTitleLength)
	}
	if summary, ok := results["summary"].(string); ok && summary != "" {
		attrs["summary"] = strings.TrimSpace(summary)
	}
	if keywords := stringSlice(results["keywords"]); len(keywords) > 0 {
		shaped := make([]string, 0, MaxKeywords)
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			shaped = append(shaped, truncate(kw, MaxKeywordLength))
			if len(shaped) == MaxKeywords {
				break
			}
		}
		attrs["keywords"] = shaped
	}

	return attrs
}

// CreateStream gates and shapes observation results, then creates a content
// object through the store. Rejected results return ErrRejected without
// touching the store.
func CreateStream(ctx context.Context, store Store, publisherID, name, objectType string, results map[string]any) (*Object, error) {
	if !Accept(results) {
		return nil, ErrRejected
	}

	attrs := AttributesFromObservations(results)
	obj := &Object{
		PublisherID: publisherID,
		Name:        name,
		Type:        objectType,
		Attributes:  attrs,
	}
	if title, ok := attrs["title"].(string); ok {
		obj.Title = title
	}

	if err := store.Create(ctx, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func number(results map[string]any, key string) float64 {
	n, _ := lookupNumber(results, key)
	return n
}

func lookupNumber(results map[string]any, key string) (float64, bool) {
	switch v := results[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func stringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
