/*
Package chunk packs a normalized news response into an ordered sequence of
channel-sized message chunks.
*/
package chunk

import (
	"fmt"

	"github.com/shanehull/inforanger/internal/types"
)

// DefaultMaxSize matches the Telegram message length budget, leaving
// headroom under the hard 4096-character API limit.
const DefaultMaxSize = 4000

// Split packs resp into chunks of at most maxSize characters using a single
// greedy forward pass. Category grouping and item order are preserved; no
// content is dropped, truncated or duplicated. A single item whose rendered
// block alone exceeds maxSize becomes its own oversized chunk.
//
// When more than one chunk results, every chunk is prefixed with
// "Part {i}/{n}\n\n" after packing, so the effective per-chunk bound is
// maxSize plus the length of that short prefix.
//
// The last chunk carries the link affordance when link is non-empty; no
// chunk does otherwise.
func Split(resp types.NewsResponse, title, link string, maxSize int) []types.MessageChunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	current := fmt.Sprintf("Here are the top %s news for you:\n\n", title)
	var texts []string

	for _, cat := range resp.NewsItems {
		header := fmt.Sprintf("<b><u>📌 %s</u></b>\n\n", cat.Category)
		if len(current)+len(header) > maxSize {
			texts = append(texts, current)
			current = header
		} else {
			current += header
		}

		for _, item := range cat.NewsItems {
			block := fmt.Sprintf("<b>%s</b>\n%s\n%s\n\n", item.Title, item.Description, item.Link)
			if len(current)+len(block) > maxSize {
				texts = append(texts, current)
				current = block
			} else {
				current += block
			}
		}

		current += "\n\n"
	}

	if current != "" {
		texts = append(texts, current)
	}

	n := len(texts)
	chunks := make([]types.MessageChunk, n)
	for i, text := range texts {
		if n > 1 {
			text = fmt.Sprintf("Part %d/%d\n\n", i+1, n) + text
		}
		chunks[i] = types.MessageChunk{
			Text:    text,
			HasLink: link != "" && i == n-1,
		}
	}
	return chunks
}
