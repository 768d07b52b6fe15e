/*
Package normalize coerces free-text AI output into the strictly typed
category/item structure, degrading to a single unformatted item rather than
failing when the output cannot be coerced.
*/
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/shanehull/inforanger/internal/ai"
	"github.com/shanehull/inforanger/internal/types"
)

// DegradedCategory is the category name used when structured processing
// fails and raw content is delivered as-is.
const DegradedCategory = "Unformatted"

// Normalizer turns raw AI answers into a validated NewsResponse, invoking
// the reformat capability when the answer is not already structured.
type Normalizer struct {
	formatter ai.Reformatter
}

// New creates a Normalizer backed by the given reformat capability.
func New(formatter ai.Reformatter) *Normalizer {
	return &Normalizer{formatter: formatter}
}

// Normalize parses raw into a NewsResponse. If raw already conforms to the
// schema it is returned directly with no reformat call. Otherwise a reformat
// pass is attempted; if that still fails the raw text is wrapped in a
// single-category degraded response. The boolean reports whether the result
// is degraded. Delivery happens either way.
func (n *Normalizer) Normalize(ctx context.Context, raw string) (types.NewsResponse, bool) {
	if resp, err := Decode(raw); err == nil {
		return resp, false
	}

	formatted, err := n.formatter.Reformat(ctx, raw)
	if err != nil {
		log.Error().Err(err).Msg("reformat call failed, delivering unformatted content")
		return degraded(raw), true
	}

	resp, err := Decode(formatted)
	if err != nil {
		log.Error().Err(err).Msg("reformatted output failed schema validation, delivering unformatted content")
		return degraded(raw), true
	}
	return resp, false
}

// Decode parses text as a NewsResponse and validates it. A JSON-encoded
// string wrapping the document is unwrapped first.
func Decode(text string) (types.NewsResponse, error) {
	text = strings.TrimSpace(text)

	var unwrapped string
	if err := json.Unmarshal([]byte(text), &unwrapped); err == nil {
		text = unwrapped
	}

	var resp types.NewsResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return types.NewsResponse{}, fmt.Errorf("not valid news JSON: %w", err)
	}
	if err := Validate(resp); err != nil {
		return types.NewsResponse{}, err
	}
	return resp, nil
}

// Validate enforces the schema rules: every category has a non-empty name
// and a non-null items array (empty allowed), and every item has a
// non-empty title. Missing description and link stay empty strings.
func Validate(resp types.NewsResponse) error {
	if resp.NewsItems == nil {
		return fmt.Errorf("missing news_items array")
	}
	for i, cat := range resp.NewsItems {
		if strings.TrimSpace(cat.Category) == "" {
			return fmt.Errorf("category %d has an empty name", i)
		}
		if cat.NewsItems == nil {
			return fmt.Errorf("category %q has no items array", cat.Category)
		}
		for j, item := range cat.NewsItems {
			if strings.TrimSpace(item.Title) == "" {
				return fmt.Errorf("item %d in category %q has an empty title", j, cat.Category)
			}
		}
	}
	return nil
}

func degraded(raw string) types.NewsResponse {
	return types.NewsResponse{
		NewsItems: []types.NewsCategory{
			{
				Category: DegradedCategory,
				NewsItems: []types.NewsItem{
					{Title: "Raw response", Description: raw},
				},
			},
		},
	}
}
