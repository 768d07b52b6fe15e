/*
Package research drives the end-to-end pipeline for a batch of queries:
expand dates, build the source link, query the AI with bounded retries,
normalize, chunk and deliver. One query's failure never aborts its siblings;
the audience always receives content, a degraded version of it, or an
explicit error notice.
*/
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/shanehull/inforanger/internal/ai"
	"github.com/shanehull/inforanger/internal/chunk"
	"github.com/shanehull/inforanger/internal/dates"
	"github.com/shanehull/inforanger/internal/normalize"
	"github.com/shanehull/inforanger/internal/notify"
	"github.com/shanehull/inforanger/internal/search"
	"github.com/shanehull/inforanger/internal/types"
)

// RetryPolicy selects what is retried after a delivery failure.
type RetryPolicy string

const (
	// RetryRequery re-runs the AI call on each attempt. A partial chunk set
	// delivered by a failed attempt cannot be retracted; the fresh answer is
	// preferred over resending possibly inconsistent content.
	RetryRequery RetryPolicy = "requery"
	// RetryResend caches the last packed chunk set and retries delivery
	// without a fresh AI call.
	RetryResend RetryPolicy = "resend"
)

// Status is the terminal state of one query run.
type Status string

const (
	StatusDelivered         Status = "delivered"
	StatusDeliveredDegraded Status = "delivered_degraded"
	StatusFailed            Status = "failed"
)

// Outcome records how one query ended.
type Outcome struct {
	Query    string
	Status   Status
	Attempts int
	Err      error
}

// Summary aggregates the per-query outcomes of one batch run.
type Summary struct {
	RunID    string
	Outcomes []Outcome
}

// Counts returns the number of delivered, degraded and failed queries.
func (s Summary) Counts() (delivered, degraded, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusDelivered:
			delivered++
		case StatusDeliveredDegraded:
			degraded++
		case StatusFailed:
			failed++
		}
	}
	return delivered, degraded, failed
}

// Mailer is the optional email digest capability, invoked best-effort after
// a successful chunk delivery.
type Mailer interface {
	SendDigest(ctx context.Context, title string, resp types.NewsResponse, link string) error
}

// Options configures an Orchestrator.
type Options struct {
	Querier       ai.Querier
	Normalizer    *normalize.Normalizer
	Deliverer     notify.Deliverer
	Mailer        Mailer // optional
	SystemMessage string
	MaxRetries    int
	RetryPolicy   RetryPolicy
	MaxChunkSize  int
	Now           func() time.Time // defaults to time.Now
}

// Orchestrator runs research queries sequentially and delivers the results.
type Orchestrator struct {
	opts Options
}

// New creates an orchestrator. MaxRetries defaults to 3, RetryPolicy to
// requery and MaxChunkSize to the chunker default.
func New(opts Options) *Orchestrator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryPolicy == "" {
		opts.RetryPolicy = RetryRequery
	}
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = chunk.DefaultMaxSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{opts: opts}
}

// Run processes queries strictly in order. Ordering of notifications is
// user-visible and the delivery channel's rate limits are per-channel, so
// there is no parallel fan-out.
func (o *Orchestrator) Run(ctx context.Context, queries []types.Query) Summary {
	summary := Summary{RunID: uuid.NewString()}

	if len(queries) == 0 {
		log.Warn().Str("run_id", summary.RunID).Msg("no queries to process")
		return summary
	}

	for _, q := range queries {
		outcome := o.runQuery(ctx, q)
		summary.Outcomes = append(summary.Outcomes, outcome)

		evt := log.Info()
		if outcome.Status == StatusFailed {
			evt = log.Error().Err(outcome.Err)
		}
		evt.Str("run_id", summary.RunID).
			Str("query", q.Title).
			Str("status", string(outcome.Status)).
			Int("attempts", outcome.Attempts).
			Msg("query finished")
	}
	return summary
}

func (o *Orchestrator) runQuery(ctx context.Context, q types.Query) Outcome {
	header := fmt.Sprintf("Here are the top %s news for you:\n\n", q.Title)
	description := dates.Expand(q.Description, o.opts.Now())

	link, err := search.BuildURL(description)
	linkNote := ""
	if err != nil {
		log.Warn().Err(err).Str("query", q.Title).Msg("falling back to default search link")
		link = search.FallbackURL
		linkNote = fmt.Sprintf("⚠️ Error creating direct link: %s\n\n", err)
	}

	var (
		cached  []types.MessageChunk
		wasDegr bool
		lastErr error
	)

	for attempt := 1; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			log.Info().Str("query", q.Title).
				Int("attempt", attempt).
				Int("max_retries", o.opts.MaxRetries).
				Msg("retrying")
		}

		chunks := cached
		if chunks == nil {
			answer, qerr := o.opts.Querier.Query(ctx, o.opts.SystemMessage, description)
			if qerr != nil {
				lastErr = qerr
				log.Error().Err(qerr).Str("query", q.Title).Int("attempt", attempt).Msg("AI query failed")
				continue
			}

			resp, degraded := o.opts.Normalizer.Normalize(ctx, withCitations(answer))
			wasDegr = degraded

			chunks = chunk.Split(resp, q.Title, link, o.opts.MaxChunkSize)
			if linkNote != "" && len(chunks) > 0 {
				chunks[0].Text = linkNote + chunks[0].Text
			}

			if o.opts.RetryPolicy == RetryResend {
				cached = chunks
			}
			if o.opts.Mailer != nil {
				o.sendDigestMail(ctx, q.Title, resp, link)
			}
		}

		if derr := o.deliverAll(ctx, chunks, link); derr != nil {
			lastErr = derr
			log.Error().Err(derr).Str("query", q.Title).Int("attempt", attempt).Msg("delivery failed")
			continue
		}

		status := StatusDelivered
		if wasDegr {
			status = StatusDeliveredDegraded
		}
		return Outcome{Query: q.Title, Status: status, Attempts: attempt}
	}

	o.reportFailure(ctx, q, header, link, lastErr)
	return Outcome{
		Query:    q.Title,
		Status:   StatusFailed,
		Attempts: o.opts.MaxRetries,
		Err:      lastErr,
	}
}

// withCitations appends the research citations as a links block, so the
// reformatting pass can fold them into the structured items.
func withCitations(answer ai.Answer) string {
	if len(answer.Citations) == 0 {
		return answer.Content
	}
	var sb strings.Builder
	sb.WriteString(answer.Content)
	sb.WriteString("\n\n<b>Links:</b>\n")
	for i, citation := range answer.Citations {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, citation)
	}
	return sb.String()
}

func (o *Orchestrator) deliverAll(ctx context.Context, chunks []types.MessageChunk, link string) error {
	for i, c := range chunks {
		if err := o.opts.Deliverer.Deliver(ctx, c, link); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (o *Orchestrator) sendDigestMail(ctx context.Context, title string, resp types.NewsResponse, link string) {
	if err := o.opts.Mailer.SendDigest(ctx, title, resp, link); err != nil {
		// email is a secondary channel, never fail the attempt for it
		log.Error().Err(err).Str("query", title).Msg("digest email failed")
	}
}

// reportFailure sends the degraded error notification after the retry
// budget is exhausted. If even that fails, a plain-text notice is attempted
// and any further failure is only logged.
func (o *Orchestrator) reportFailure(ctx context.Context, q types.Query, header, link string, cause error) {
	text := header +
		fmt.Sprintf("⚠️ Error retrieving information: %s\n\n", errText(cause)) +
		"Please try again later or check your API configuration."

	errChunk := types.MessageChunk{Text: text, HasLink: true}
	if err := o.opts.Deliverer.Deliver(ctx, errChunk, link); err != nil {
		log.Error().Err(err).Str("query", q.Title).Msg("error notification delivery failed")

		notice := fmt.Sprintf("⚠️ Error processing query '%s': %s", q.Title, errText(cause))
		if nerr := o.opts.Deliverer.Notify(ctx, notice); nerr != nil {
			log.Error().Err(nerr).Str("query", q.Title).Msg("fallback notice failed, giving up")
		}
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
