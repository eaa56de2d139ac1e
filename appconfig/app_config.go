package appconfig

import (
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	GrpcPort string `env:"GRPC-PORT" ini:"grpc_port"`
	HttpPort string `env:"HTTP-PORT" ini:"http_port"`
	Tenant   string `ini:"tenant"`

	SessionBackend    string `env:"SESSION-BACKEND" ini:"session_backend"`
	RedisAddr         string `env:"REDIS-ADDR" ini:"redis_addr"`
	RedisPassword     string `env:"REDIS-PASSWORD" ini:"redis_password"`
	RedisDB           int    `ini:"redis_db"`
	SessionTTLMinutes int    `ini:"session_ttl_minutes"`
	CommitBackend     string `env:"COMMIT-BACKEND" ini:"commit_backend"`

	LLMProvider   string `env:"LLM-PROVIDER" ini:"llm_provider"`
	LLMModel      string `ini:"llm_model"`
	MiniLLMModel  string `ini:"mini_llm_model"`
	GeminiAPIKey  string `env:"GEMINI-API-KEY" ini:"gemini_api_key"`
	RewordReplies bool   `ini:"reword_replies"`

	BusyPolicy              string `ini:"busy_policy"`
	HistoryWindowTurns      int    `ini:"history_window_turns"`
	CollaboratorTimeoutSecs int    `ini:"collaborator_timeout_seconds"`
	HttpRatePerMinute       int    `ini:"http_rate_per_minute"`
}

// ApplyDefaults fills zero values so a sparse config.ini still boots.
func (c *AppConfig) ApplyDefaults() {
	setDefault(&c.GrpcPort, ":50051")
	setDefault(&c.HttpPort, ":8081")
	setDefault(&c.Tenant, "bikeshop")
	setDefault(&c.SessionBackend, "memory")
	setDefault(&c.CommitBackend, "memory")
	setDefault(&c.LLMProvider, "ollama")
	setDefault(&c.LLMModel, "llama3.1:8b")
	setDefault(&c.MiniLLMModel, c.LLMModel)
	setDefault(&c.BusyPolicy, "queue")
	if c.HistoryWindowTurns <= 0 {
		c.HistoryWindowTurns = 6
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = 24 * 60
	}
	if c.CollaboratorTimeoutSecs <= 0 {
		c.CollaboratorTimeoutSecs = 20
	}
	if c.HttpRatePerMinute <= 0 {
		c.HttpRatePerMinute = 60
	}
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *AppConfig) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutSecs) * time.Second
}

func setDefault(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
