package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/inforanger/internal/types"
)

type fakeFormatter struct {
	calls  int
	output string
	err    error
}

func (f *fakeFormatter) Reformat(ctx context.Context, content string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

const validJSON = `{
	"news_items": [
		{
			"category": "Technology",
			"news_items": [
				{"title": "Go 1.25 released", "description": "New GC.", "link": "https://go.dev"},
				{"title": "Second item", "description": "", "link": ""}
			]
		}
	]
}`

func TestNormalizeValidJSONSkipsReformat(t *testing.T) {
	f := &fakeFormatter{}
	n := New(f)

	resp, degraded := n.Normalize(context.Background(), validJSON)

	assert.False(t, degraded)
	assert.Equal(t, 0, f.calls, "reformat capability must not be called for valid input")
	require.Len(t, resp.NewsItems, 1)
	assert.Equal(t, "Technology", resp.NewsItems[0].Category)
	require.Len(t, resp.NewsItems[0].NewsItems, 2)
	assert.Equal(t, "Go 1.25 released", resp.NewsItems[0].NewsItems[0].Title)
}

func TestNormalizeReformatsFreeText(t *testing.T) {
	f := &fakeFormatter{output: validJSON}
	n := New(f)

	resp, degraded := n.Normalize(context.Background(), "Here is some news: Go 1.25 came out...")

	assert.False(t, degraded)
	assert.Equal(t, 1, f.calls)
	require.Len(t, resp.NewsItems, 1)
	assert.Equal(t, "Technology", resp.NewsItems[0].Category)
}

func TestNormalizeUnwrapsJSONEncodedString(t *testing.T) {
	// Some structured-output models return the document as a JSON string.
	wrapped, err := json.Marshal(validJSON)
	require.NoError(t, err)

	f := &fakeFormatter{output: string(wrapped)}
	n := New(f)

	resp, degraded := n.Normalize(context.Background(), "free text")

	assert.False(t, degraded)
	require.Len(t, resp.NewsItems, 1)
	assert.Equal(t, "Technology", resp.NewsItems[0].Category)
}

func TestNormalizeDegradesWhenReformatFails(t *testing.T) {
	f := &fakeFormatter{err: errors.New("model unavailable")}
	n := New(f)

	raw := "unstructured blob of text"
	resp, degraded := n.Normalize(context.Background(), raw)

	assert.True(t, degraded)
	require.Len(t, resp.NewsItems, 1)
	assert.Equal(t, DegradedCategory, resp.NewsItems[0].Category)
	require.Len(t, resp.NewsItems[0].NewsItems, 1)
	assert.Equal(t, raw, resp.NewsItems[0].NewsItems[0].Description)
}

func TestNormalizeDegradesWhenReformatOutputInvalid(t *testing.T) {
	f := &fakeFormatter{output: `{"news_items": [{"category": "", "news_items": []}]}`}
	n := New(f)

	raw := "still not parseable"
	resp, degraded := n.Normalize(context.Background(), raw)

	assert.True(t, degraded)
	assert.Equal(t, DegradedCategory, resp.NewsItems[0].Category)
	assert.Equal(t, raw, resp.NewsItems[0].NewsItems[0].Description)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		resp    types.NewsResponse
		wantErr bool
	}{
		{
			name:    "nil categories",
			resp:    types.NewsResponse{},
			wantErr: true,
		},
		{
			name:    "empty categories allowed",
			resp:    types.NewsResponse{NewsItems: []types.NewsCategory{}},
			wantErr: false,
		},
		{
			name: "empty category name",
			resp: types.NewsResponse{NewsItems: []types.NewsCategory{
				{Category: " ", NewsItems: []types.NewsItem{}},
			}},
			wantErr: true,
		},
		{
			name: "nil items array",
			resp: types.NewsResponse{NewsItems: []types.NewsCategory{
				{Category: "Tech"},
			}},
			wantErr: true,
		},
		{
			name: "empty items array allowed",
			resp: types.NewsResponse{NewsItems: []types.NewsCategory{
				{Category: "Tech", NewsItems: []types.NewsItem{}},
			}},
			wantErr: false,
		},
		{
			name: "item with empty title",
			resp: types.NewsResponse{NewsItems: []types.NewsCategory{
				{Category: "Tech", NewsItems: []types.NewsItem{{Title: ""}}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
