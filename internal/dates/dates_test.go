package dates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func TestExpandPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "today",
			in:   "Get headlines for {today}.",
			want: "Get headlines for Mar 15, 2025.",
		},
		{
			name: "yesterday",
			in:   "News from {yesterday} only",
			want: "News from Mar 14, 2025 only",
		},
		{
			name: "last week range",
			in:   "Top business news {from_last_week}.",
			want: "Top business news from Mar 07, 2025 to Mar 15, 2025.",
		},
		{
			name: "last month range",
			in:   "Considering the news {from_last_month}, what changed?",
			want: "Considering the news from Feb 11, 2025 to Mar 15, 2025, what changed?",
		},
		{
			name: "multiple placeholders",
			in:   "{yesterday} vs {today}",
			want: "Mar 14, 2025 vs Mar 15, 2025",
		},
		{
			name: "no placeholders",
			in:   "Plain description with no dates",
			want: "Plain description with no dates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.in, fixedNow))
		})
	}
}

func TestExpandLeavesUnknownPlaceholders(t *testing.T) {
	got := Expand("Headlines {today} about {topic}", fixedNow)
	assert.Equal(t, "Headlines Mar 15, 2025 about {topic}", got)
}

func TestExpandIsIdempotent(t *testing.T) {
	once := Expand("News {from_last_week} and {today}", fixedNow)
	twice := Expand(once, fixedNow)
	assert.Equal(t, once, twice)
}

func TestExpandRemovesAllTokens(t *testing.T) {
	in := "a {today} b {yesterday} c {from_last_week} d {from_last_month} e"
	got := Expand(in, fixedNow)
	for _, token := range []string{"{today}", "{yesterday}", "{from_last_week}", "{from_last_month}"} {
		assert.NotContains(t, got, token)
	}
	// surrounding text preserved verbatim and in order
	assert.True(t, strings.HasPrefix(got, "a "))
	assert.True(t, strings.HasSuffix(got, " e"))
	assert.Regexp(t, `^a .+ b .+ c .+ d .+ e$`, got)
}
