package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/priya/fincoach/internal/assistant"
	"github.com/priya/fincoach/internal/engine"
	"github.com/priya/fincoach/internal/gateway"
	"github.com/priya/fincoach/internal/governance"
	"github.com/priya/fincoach/internal/nlp"
	"github.com/priya/fincoach/internal/observability"
	"github.com/priya/fincoach/internal/ops"
	"github.com/priya/fincoach/internal/session"
	"github.com/priya/fincoach/internal/store"
	"github.com/priya/fincoach/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.yaml")

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var model llms.Model
	var err error
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	// Long-term memory (profiles, holdings, stored results)
	profiles, err := store.NewProfileStore(cfg.Memory.ProfilePath)
	if err != nil {
		log.Fatal(err)
	}

	// Session store (active stacks, pending input)
	sessions, err := session.NewSQLiteStore(cfg.Memory.SessionPath)
	if err != nil {
		log.Fatal(err)
	}

	market := ops.NewMarketClient(cfg.Market.BaseURL, cfg.Market.APIKey)

	// Operation registry
	registry := ops.NewRegistry()
	registry.Register(ops.NewAssetInfoOp(market))
	registry.Register(ops.NewFinancialsOp(market))
	registry.Register(ops.NewEarningsOp(market))
	registry.Register(ops.NewMarketDataOp(market))
	registry.Register(ops.NewMarketAssessOp(market, model))
	registry.Register(ops.NewSectorAssessOp(market, model))
	registry.Register(ops.NewScreenAssetsOp(market))
	registry.Register(ops.NewUserInfoOp(profiles))
	registry.Register(ops.NewUserPortfolioOp(profiles, market))
	registry.Register(ops.NewInvestmentCriteriaOp(profiles))

	assetAssess := ops.NewAssetAssessOp(model, profiles)
	registry.Register(assetAssess)
	marketRec := ops.NewMarketRecOp(model, profiles)
	registry.Register(marketRec)
	createPortfolio := ops.NewCreatePortfolioOp(model)
	registry.Register(createPortfolio)

	searchOp, err := ops.NewSearchWebOp()
	if err != nil {
		log.Printf("Warning: Failed to initialize web search: %v", err)
	} else {
		registry.Register(searchOp)
	}

	macrosOp, err := ops.NewMacrosOp(model)
	if err != nil {
		log.Printf("Warning: Failed to initialize macro research: %v", err)
	} else {
		registry.Register(macrosOp)
	}

	prompts := assistant.NewPromptManager(cfg.App.PromptsDir)
	logger := observability.NewLogger()

	extractorPrompt, err := prompts.GetExtractorPrompt()
	if err != nil {
		log.Printf("Warning: %v", err)
		extractorPrompt = "You are a field extraction specialist. Extract the requested fields from user input accurately."
	}
	narratorPrompt, err := prompts.GetNarratorPrompt()
	if err != nil {
		log.Printf("Warning: %v", err)
		narratorPrompt = "You are a personal financial assistant. Summarize results clearly and concisely."
	}

	extractor := nlp.NewLLMExtractor(model, extractorPrompt)
	extractor.Logger = logger
	narrator := nlp.NewNarrator(model, narratorPrompt)
	narrator.Logger = logger

	gov := governance.NewDefaultPolicyEngine()
	// No live-trading from chat, ever.
	gov.DenyOperation("execute_trade")
	gov.DenyOperation("rebalance_pie")

	eng := engine.New(registry, sessions, extractor)
	eng.Policy = gov
	eng.Logger = logger
	eng.Sink = profiles
	eng.TTL = time.Duration(cfg.Memory.SessionTTLHours) * time.Hour

	// Synthesis operations read prerequisite results through the engine.
	assetAssess.Source = eng
	marketRec.Source = eng
	createPortfolio.Source = eng

	asst := assistant.New(eng, registry, narrator, model, prompts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Expire abandoned sessions in the background.
	sweeper := session.NewSweeper(sessions, eng.TTL)
	go sweeper.Start(ctx)

	// Live dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	var gateways []gateway.Messenger

	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, asst)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, tg)
	}

	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, asst)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, dc)
	}

	if len(gateways) == 0 {
		log.Fatal("No gateway enabled in config")
	}

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop()
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()

	for _, gw := range gateways {
		_ = gw.Stop()
	}
	_ = sessions.Close()
	_ = profiles.Close()

	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] FINCOACH DE-INITIALIZED. GOODBYE.\033[0m")
}
