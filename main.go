package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaiNageswarS/booking-agent/agentboot"
	"github.com/SaiNageswarS/booking-agent/appconfig"
	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/booking-agent/nlu"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/booking-agent/reservations"
	"github.com/SaiNageswarS/booking-agent/services"
	"github.com/SaiNageswarS/booking-agent/session"
	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	dotenv.LoadEnv()

	// load config file
	ccfgg := &appconfig.AppConfig{}
	if err := config.LoadConfig("config.ini", ccfgg); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	ccfgg.ApplyDefaults()

	ctx := getCancellableContext()

	client, closeClient := provideLLMClient(ctx, ccfgg)
	defer closeClient()

	var mongoClient odm.MongoClient
	if ccfgg.SessionBackend == "mongo" || ccfgg.CommitBackend == "mongo" {
		mongoClient = odm.ProvideMongoClient()
	}

	cat := catalog.Default()
	window := memory.NewWindow(ccfgg.HistoryWindowTurns)
	model := ccfgg.MiniLLMModel

	machine := booking.NewMachine(cat, booking.Collaborators{
		Router:       nlu.FallbackRouter{Primary: nlu.NewLLMRouter(client, window, model), Secondary: nlu.NewKeywordRouter()},
		Extractor:    nlu.FallbackExtractor{Primary: nlu.NewLLMExtractor(client, window, model), Secondary: nlu.NewRuleExtractor()},
		Confirmation: nlu.FallbackConfirmation{Primary: nlu.NewLLMConfirmation(client, window, model, cat), Secondary: nlu.NewKeywordConfirmation()},
		Detour:       nlu.FallbackDetour{Primary: nlu.NewLLMDetour(client, window, model, cat), Secondary: nlu.NewKeywordDetour()},
		Sink:         provideSink(ccfgg, mongoClient),
	},
		booking.WithHistoryWindow(ccfgg.HistoryWindowTurns),
		booking.WithCollaboratorTimeout(ccfgg.CollaboratorTimeout()),
	)

	var rendererOpts []render.LLMRendererOption
	if ccfgg.RewordReplies {
		rendererOpts = append(rendererOpts, render.WithRewording())
	}

	controller := session.NewController(provideStore(ctx, ccfgg, mongoClient),
		session.WithBusyPolicy(session.BusyPolicy(ccfgg.BusyPolicy)))

	agent := agentboot.NewAgentBuilder().
		WithMachine(machine).
		WithRenderer(render.NewLLMRenderer(client, cat, window, rendererOpts...)).
		WithController(controller).
		WithSafety(nlu.NewKeywordSafety()).
		Build()

	router := services.NewRouter(agent, ccfgg.HttpRatePerMinute)

	boot, err := server.New().
		GRPCPort(ccfgg.GrpcPort).
		HTTPPort(ccfgg.HttpPort).
		Provide(ccfgg).
		ProvideAs(agent, (*services.TurnRunner)(nil)).
		ApplySettings(services.StreamingOptions()).
		RegisterService(server.Adapt(services.RegisterChatServer), services.ProvideChatService).
		Handle("/v1/", router.ServeHTTP).
		Handle("/healthz", router.ServeHTTP).
		Build()

	if err != nil {
		logger.Fatal("Dependency Injection Failed", zap.Error(err))
	}

	// serves until SIGINT/SIGTERM cancels ctx
	if err := boot.Serve(ctx); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

func provideLLMClient(ctx context.Context, ccfgg *appconfig.AppConfig) (llm.LLMClient, func()) {
	switch ccfgg.LLMProvider {
	case "groq":
		return llm.NewGroqClient(ccfgg.LLMModel), func() {}
	case "anthropic":
		return llm.NewAnthropicClient(ccfgg.LLMModel), func() {}
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, ccfgg.GeminiAPIKey, ccfgg.LLMModel)
		if err != nil {
			logger.Fatal("Failed to create Gemini client", zap.Error(err))
		}
		return client, func() { _ = client.Close() }
	case "ollama":
		return llm.NewOllamaClient(ccfgg.LLMModel), func() {}
	default:
		logger.Fatal("Unknown llm_provider", zap.String("provider", ccfgg.LLMProvider))
		return nil, nil
	}
}

func provideStore(ctx context.Context, ccfgg *appconfig.AppConfig, mongoClient odm.MongoClient) session.Store {
	switch ccfgg.SessionBackend {
	case "mongo":
		return session.NewMongoStore(mongoClient, ccfgg.Tenant)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     ccfgg.RedisAddr,
			Password: ccfgg.RedisPassword,
			DB:       ccfgg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.String("addr", ccfgg.RedisAddr), zap.Error(err))
		}
		return session.NewRedisStore(rdb, ccfgg.SessionTTL())
	default:
		return session.NewMemoryStore()
	}
}

func provideSink(ccfgg *appconfig.AppConfig, mongoClient odm.MongoClient) booking.CommitSink {
	if ccfgg.CommitBackend == "mongo" {
		return reservations.NewMongoSink(mongoClient, ccfgg.Tenant)
	}
	return reservations.NewMemorySink()
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
