package content

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccept(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]any
		want    bool
	}{
		{"clean content", map[string]any{"obscene": 0.0, "controversial": 0.0, "confidence": 0.9}, true},
		{"obscene above threshold", map[string]any{"obscene": 5.0}, false},
		{"obscene at threshold passes", map[string]any{"obscene": 3.0}, true},
		{"controversial above threshold", map[string]any{"controversial": 6.0}, false},
		{"controversial at threshold passes", map[string]any{"controversial": 5.0}, true},
		{"low confidence", map[string]any{"confidence": 0.4}, false},
		{"confidence at threshold passes", map[string]any{"confidence": 0.6}, true},
		{"missing confidence passes", map[string]any{"obscene": 1.0}, true},
		{"empty results pass", map[string]any{}, true},
		{"integer scores", map[string]any{"obscene": 4}, false},
		{"non-numeric scores ignored", map[string]any{"obscene": "high"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accept(tt.results))
		})
	}
}

func TestAttributesFromObservations(t *testing.T) {
	longTitle := strings.Repeat("t", 150)
	results := map[string]any{
		"title":    "  " + longTitle + "  ",
		"summary":  " a short summary ",
		"keywords": []any{" Alpha ", "BETA", "", strings.Repeat("k", 40)},
		"obscene":  2.0,
	}

	attrs := AttributesFromObservations(results)

	title := attrs["title"].(string)
	assert.Len(t, title, MaxTitleLength)
	assert.Equal(t, "a short summary", attrs["summary"])

	keywords := attrs["keywords"].([]string)
	require.Len(t, keywords, 3)
	assert.Equal(t, "alpha", keywords[0])
	assert.Equal(t, "beta", keywords[1])
	assert.Len(t, keywords[2], MaxKeywordLength)

	_, hasObscene := attrs["obscene"]
	assert.False(t, hasObscene, "non-allowlisted fields must be dropped")
}

func TestAttributesFromObservationsCapsKeywordCount(t *testing.T) {
	keywords := make([]string, 15)
	for i := range keywords {
		keywords[i] = "kw"
	}

	attrs := AttributesFromObservations(map[string]any{"keywords": keywords})
	assert.Len(t, attrs["keywords"].([]string), MaxKeywords)
}

type fakeStore struct {
	created *Object
	saved   *Object
	fetched *Object
	err     error
}

func (f *fakeStore) Create(ctx context.Context, obj *Object) error {
	f.created = obj
	return f.err
}

func (f *fakeStore) FetchOne(ctx context.Context, publisherID, name string) (*Object, error) {
	return f.fetched, f.err
}

func (f *fakeStore) Save(ctx context.Context, obj *Object) error {
	f.saved = obj
	return f.err
}

func TestCreateStream(t *testing.T) {
	store := &fakeStore{}

	obj, err := CreateStream(context.Background(), store, "pub-1", "stream-1", "article", map[string]any{
		"title":      "A Fresh Take",
		"summary":    "Something new.",
		"confidence": 0.95,
	})

	require.NoError(t, err)
	require.Same(t, obj, store.created)
	assert.Equal(t, "pub-1", obj.PublisherID)
	assert.Equal(t, "stream-1", obj.Name)
	assert.Equal(t, "article", obj.Type)
	assert.Equal(t, "A Fresh Take", obj.Title)
	assert.Equal(t, "Something new.", obj.Attributes["summary"])
}

func TestCreateStreamRejectedSkipsStore(t *testing.T) {
	store := &fakeStore{}

	_, err := CreateStream(context.Background(), store, "pub-1", "stream-1", "article", map[string]any{
		"obscene": 9.0,
	})

	assert.ErrorIs(t, err, ErrRejected)
	assert.Nil(t, store.created, "rejected content must never reach the store")
}

func TestSetAttribute(t *testing.T) {
	var obj Object
	obj.SetAttribute("k", "v")
	assert.Equal(t, "v", obj.Attributes["k"])
}
