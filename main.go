package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/tripdesk/server/internal/agent/graph"
	"github.com/tripdesk/server/internal/agent/model"
	"github.com/tripdesk/server/internal/agent/repo"
	"github.com/tripdesk/server/internal/core"
	"github.com/tripdesk/server/internal/policy"
	"github.com/tripdesk/server/internal/travel"
	logx "github.com/tripdesk/server/pkg/logger"
	pkgredis "github.com/tripdesk/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the travel support demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config
	DB    model.TravelDBConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Model     model.AssistantModelConfig
	Embedding model.EmbeddingConfig
	Approval  model.ApprovalConfig
	Thread    model.ThreadConfig
	Session   model.SessionDefaults
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	store, err := travel.Open(envCfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to open travel database: %v", err)
	}
	defer store.Close()
	if err := store.Seed(); err != nil {
		log.Fatalf("Failed to seed travel database: %v", err)
	}
	logx.Info().Str("dsn", envCfg.DB.DSN).Msg("Travel database ready")

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  envCfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	policies, err := policy.NewFAQRetriever(ctx, policy.NewGenAIEmbedder(genaiClient, envCfg.Embedding.Model))
	if err != nil {
		log.Fatalf("Failed to build policy retriever: %v", err)
	}

	ttl, err := time.ParseDuration(envCfg.Thread.TTL)
	if err != nil {
		log.Fatalf("Invalid THREAD_TTL '%s': %v", envCfg.Thread.TTL, err)
	}

	runner, err := graph.BuildTravelGraph(ctx, graph.Config{
		APIKey:      envCfg.APIKey,
		BaseURL:     envCfg.BaseURL,
		Model:       envCfg.Model,
		Approval:    envCfg.Approval,
		Session:     envCfg.Session,
		Thread:      envCfg.Thread,
		Store:       store,
		Policies:    policies,
		PolicyTopK:  envCfg.Embedding.TopK,
		Threads:     repo.NewRedisThreadRepository(rdb, ttl),
		CheckPoints: repo.NewRedisCheckPointStore(rdb, ttl),
	})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	threadID := uuid.NewString()
	passengerID := envCfg.Session.PassengerID
	if passengerID == "" {
		passengerID = "3442 587242"
	}

	queries := []string{
		"Hi there, what time is my flight?",
		"Am I allowed to update my flight to something sooner? I want to leave later today.",
		"Update my flight to sometime next week then.",
		"What about lodging and transportation?",
		"Yeah I think I'd like an affordable hotel for my week-long stay (7 days).",
	}

	for i, query := range queries {
		fmt.Printf("\n[turn %d] user: %s\n", i+1, query)

		result, err := runner.RunTurn(ctx, model.TurnInput{
			ThreadID:    threadID,
			PassengerID: passengerID,
			Query:       query,
		})
		if err != nil {
			log.Fatalf("Turn %d failed: %v", i+1, err)
		}

		result = resolveApprovals(ctx, runner, result, i)
		fmt.Printf("[turn %d] assistant: %s\n", i+1, result.Reply)
		if len(result.DialogStack) > 0 {
			fmt.Printf("[turn %d] active assistant: %s\n", i+1, model.TopDialog(result.DialogStack))
		}
	}

	logx.Info().Str("thread_id", threadID).Msg("Demo conversation finished")
}

// resolveApprovals drives the approval protocol for the demo: the first
// sensitive action is denied to show the substitution path, everything after
// that is approved.
func resolveApprovals(ctx context.Context, runner *graph.Runner, result *model.TurnResult, turn int) *model.TurnResult {
	denied := false
	for result.Interrupted {
		for _, p := range result.Pending {
			fmt.Printf("[turn %d] pending sensitive action: %s(%s)\n", turn+1, p.Tool, p.Arguments)
		}

		var err error
		if !denied && turn == 2 {
			denied = true
			result, err = runner.Deny(ctx, result.ThreadID, "Only fly direct, please pick a nonstop option.")
		} else {
			result, err = runner.Approve(ctx, result.ThreadID)
		}
		if err != nil {
			logx.Error().Err(err).Msg("Failed to resume suspended turn")
			os.Exit(1)
		}
	}
	return result
}
