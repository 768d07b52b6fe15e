/*
Package config loads and validates the query lists, AI settings and channel
settings for a run. Configuration is loaded once per process invocation and
never mutated afterwards; secrets come from environment variables.
*/
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/shanehull/inforanger/internal/types"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// DefaultSystemMessage is the research system prompt used when the config
// file does not override it.
const DefaultSystemMessage = `You are an expert news curator and researcher. You have to find the most relevant news for the user. Include at least 8 news items in your response. Do not hallucinate and include news that are not present in the requested date range.
Please output in the following format. Do not include any other text in your response.

<b><i>Sub Topic 1</i></b>

<b>Title 1</b>
Description 1

<b>Title 2</b>
Description 2

...
`

// QueryConfig is one configured research topic. Custom queries additionally
// carry a runner name and a cron schedule.
type QueryConfig struct {
	Name        string `yaml:"name,omitempty"`
	Title       string `yaml:"title"        validate:"required"`
	Description string `yaml:"description"  validate:"required"`
	Cron        string `yaml:"cron,omitempty"`
}

// AIConfig holds model selection and the retry budget.
type AIConfig struct {
	ResearchModel   string `yaml:"research_model"   validate:"required"`
	FormattingModel string `yaml:"formatting_model" validate:"required"`
	SystemMessage   string `yaml:"system_message,omitempty"`
	MaxRetries      int    `yaml:"max_retries"      validate:"gte=1"`
}

// DeliveryConfig controls chunking and the retry policy after a delivery
// failure: "requery" re-runs the AI call, "resend" retries delivery of the
// cached chunk set.
type DeliveryConfig struct {
	RetryPolicy  string `yaml:"retry_policy"   validate:"oneof=requery resend"`
	MaxChunkSize int    `yaml:"max_chunk_size" validate:"gte=1"`
}

// TelegramSettings identifies the target channel. The bot token comes from
// the TELEGRAM_BOT_TOKEN environment variable.
type TelegramSettings struct {
	ChannelID string `yaml:"channel_id"`
}

// EmailSettings configures the optional email digest channel. The SMTP
// password comes from the SMTP_PASSWORD environment variable.
type EmailSettings struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Config is the full run configuration.
type Config struct {
	Daily    []QueryConfig    `yaml:"daily"   validate:"dive"`
	Weekly   []QueryConfig    `yaml:"weekly"  validate:"dive"`
	Monthly  []QueryConfig    `yaml:"monthly" validate:"dive"`
	Custom   []QueryConfig    `yaml:"custom"  validate:"dive"`
	AI       AIConfig         `yaml:"ai"`
	Delivery DeliveryConfig   `yaml:"delivery"`
	Telegram TelegramSettings `yaml:"telegram"`
	Email    EmailSettings    `yaml:"email"`
}

// DefaultConfigPath returns the XDG config location for the config file.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "inforanger", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path, falling back to the embedded defaults
// when path is empty and the default location does not exist yet (the
// defaults are written there on first run).
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			defaults, derr := loadDefaults()
			if derr != nil {
				return nil, derr
			}
			// write defaults to the config path for next run; non-fatal
			if werr := writeDefaults(path); werr != nil {
				log.Warn().Err(werr).Str("path", path).Msg("could not write default config")
			}
			return defaults, Validate(defaults)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyFallbacks(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func applyFallbacks(cfg *Config) {
	if cfg.AI.ResearchModel == "" {
		cfg.AI.ResearchModel = "sonar-reasoning-pro"
	}
	if cfg.AI.FormattingModel == "" {
		cfg.AI.FormattingModel = "gemini-2.5-flash"
	}
	if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 3
	}
	if cfg.Delivery.RetryPolicy == "" {
		cfg.Delivery.RetryPolicy = "requery"
	}
	if cfg.Delivery.MaxChunkSize == 0 {
		cfg.Delivery.MaxChunkSize = 4000
	}
}

var runnerNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Reserved runner names that custom queries may not claim.
var reservedNames = map[string]bool{"daily": true, "weekly": true, "monthly": true}

// Validate checks struct rules plus the custom-query constraints: a unique,
// well-formed runner name and a parseable cron expression.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	seen := make(map[string]bool)
	for i, q := range cfg.Custom {
		if q.Name == "" {
			return fmt.Errorf("custom query %d (%q): name is required", i, q.Title)
		}
		if !runnerNameRe.MatchString(q.Name) {
			return fmt.Errorf("custom query %q: name must match %s", q.Name, runnerNameRe)
		}
		if reservedNames[q.Name] {
			return fmt.Errorf("custom query %q: name is reserved", q.Name)
		}
		if seen[q.Name] {
			return fmt.Errorf("custom query %q: duplicate name", q.Name)
		}
		seen[q.Name] = true

		if q.Cron == "" {
			return fmt.Errorf("custom query %q: cron is required", q.Name)
		}
		if _, err := parser.Parse(q.Cron); err != nil {
			return fmt.Errorf("custom query %q: invalid cron %q: %w", q.Name, q.Cron, err)
		}
	}
	return nil
}

// SystemMessage returns the configured research system prompt, or the
// default when unset.
func (c *Config) SystemMessage() string {
	if c.AI.SystemMessage != "" {
		return c.AI.SystemMessage
	}
	return DefaultSystemMessage
}

// Queries returns the list for one schedule class as pipeline queries.
// For ScheduleCustom it returns all custom queries.
func (c *Config) Queries(class types.ScheduleClass) []types.Query {
	var list []QueryConfig
	switch class {
	case types.ScheduleDaily:
		list = c.Daily
	case types.ScheduleWeekly:
		list = c.Weekly
	case types.ScheduleMonthly:
		list = c.Monthly
	case types.ScheduleCustom:
		list = c.Custom
	}

	queries := make([]types.Query, 0, len(list))
	for _, q := range list {
		queries = append(queries, types.Query{
			Name:        q.Name,
			Title:       q.Title,
			Description: q.Description,
			Schedule:    class,
			Cron:        q.Cron,
		})
	}
	return queries
}

// PerplexityKey returns the research API key from the environment.
func (c *Config) PerplexityKey() string {
	return os.Getenv("PPLX_API_KEY")
}

// GeminiKey returns the formatting API key from the environment.
func (c *Config) GeminiKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// TelegramBotToken returns the bot token from the environment.
func (c *Config) TelegramBotToken() string {
	return os.Getenv("TELEGRAM_BOT_TOKEN")
}

// SMTPPassword returns the SMTP password from the environment.
func (c *Config) SMTPPassword() string {
	return os.Getenv("SMTP_PASSWORD")
}
