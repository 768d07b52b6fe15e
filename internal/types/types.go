/*
Package types holds the shared leaf entities flowing through the research
and delivery pipeline.
*/
package types

// ScheduleClass is the cadence bucket a query belongs to.
type ScheduleClass string

const (
	ScheduleDaily   ScheduleClass = "daily"
	ScheduleWeekly  ScheduleClass = "weekly"
	ScheduleMonthly ScheduleClass = "monthly"
	ScheduleCustom  ScheduleClass = "custom"
)

// Query is a configured research topic. Description may contain date
// placeholders that are expanded once per run.
type Query struct {
	Name        string
	Title       string
	Description string
	Schedule    ScheduleClass
	Cron        string
}

// NewsItem is a single news entry as returned by the research AI.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// NewsCategory groups news items under a topic heading. Item order is
// relevance order as returned by the AI and is preserved end-to-end.
type NewsCategory struct {
	Category  string     `json:"category"`
	NewsItems []NewsItem `json:"news_items"`
}

// NewsResponse is the normalized, categorized result of one research run.
type NewsResponse struct {
	NewsItems []NewsCategory `json:"news_items"`
}

// MessageChunk is one outbound message sized to a delivery channel's limit.
// HasLink marks the single chunk that carries the source link affordance.
type MessageChunk struct {
	Text    string
	HasLink bool
}
