package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/shanehull/inforanger/internal/ai"
	"github.com/shanehull/inforanger/internal/config"
	"github.com/shanehull/inforanger/internal/normalize"
	"github.com/shanehull/inforanger/internal/notify"
	"github.com/shanehull/inforanger/internal/research"
	"github.com/shanehull/inforanger/internal/schedule"
)

const runTimeout = 14 * time.Minute

var (
	configPath = flag.String("config", "", "Path to config file (default: XDG config dir)")
	listOnly   = flag.Bool("list", false, "List available schedules and exit")
	verbose    = flag.Bool("v", false, "Verbose (debug) logging")
)

func init() {
	flag.Usage = func() {
		fmt.Printf("Usage: inforanger [flags] <schedule>\n\n")
		fmt.Printf("Runs the research-and-deliver pipeline for one schedule:\n")
		fmt.Printf("  daily, weekly, monthly, or a custom query name from the config.\n\n")
		fmt.Printf("Flags:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	log.DefaultLogger = log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{ColorOutput: true},
	}
	if *verbose {
		log.DefaultLogger.Level = log.DebugLevel
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Fatal error loading config: %v\n", err)
		os.Exit(1)
	}

	registry := schedule.Build(cfg, buildOrchestrator(cfg))

	if *listOnly {
		fmt.Printf("Available schedules: %s\n", strings.Join(registry.Names(), ", "))
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := registry.Run(ctx, flag.Arg(0))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.Message)
	if !result.OK {
		os.Exit(1)
	}
}

func buildOrchestrator(cfg *config.Config) *research.Orchestrator {
	querier := ai.NewPerplexity(ai.PerplexityConfig{
		APIKey: cfg.PerplexityKey(),
		Model:  cfg.AI.ResearchModel,
	})
	formatter := ai.NewGeminiFormatter(cfg.GeminiKey(), cfg.AI.FormattingModel)

	deliverer := notify.NewTelegramSender(notify.TelegramConfig{
		BotToken:  cfg.TelegramBotToken(),
		ChannelID: cfg.Telegram.ChannelID,
	})

	var mailer research.Mailer
	if cfg.Email.Enabled {
		mailer = notify.NewEmailDigest(notify.EmailConfig{
			SMTPServer: cfg.Email.SMTPServer,
			SMTPPort:   cfg.Email.SMTPPort,
			SMTPUser:   cfg.Email.SMTPUser,
			SMTPPass:   cfg.SMTPPassword(),
			FromEmail:  cfg.Email.FromEmail,
			ToEmail:    cfg.Email.ToEmail,
			Enabled:    true,
		})
	}

	return research.New(research.Options{
		Querier:       querier,
		Normalizer:    normalize.New(formatter),
		Deliverer:     deliverer,
		Mailer:        mailer,
		SystemMessage: cfg.SystemMessage(),
		MaxRetries:    cfg.AI.MaxRetries,
		RetryPolicy:   research.RetryPolicy(cfg.Delivery.RetryPolicy),
		MaxChunkSize:  cfg.Delivery.MaxChunkSize,
	})
}
