package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	NATSURL               string
	JWTSecret             string
	DockerHost            string
	ExecutionTimeout      time.Duration
	CompileTimeout        time.Duration
	CodeRunMemoryMB       int
	CodeRunCPUShares      int
	MaxConcurrentSessions int
	WorkspaceRoot         string
	ProblemCacheTTL       time.Duration
	ExecuteRateLimit      int
	SubmitRateLimit       int
	AIProvider            string
	OpenAIAPIKey          string
	AnthropicAPIKey       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PRAXIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Praxis API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("execution_timeout_ms", 10000)
	v.SetDefault("compile_timeout_ms", 30000)
	v.SetDefault("code_run_memory_mb", 128)
	v.SetDefault("code_run_cpu_shares", 512)
	v.SetDefault("max_concurrent_sessions", 8)
	v.SetDefault("problem.cache_ttl", "5m")
	v.SetDefault("execute_rate_limit", 30)
	v.SetDefault("submit_rate_limit", 10)
	v.SetDefault("ai.provider", "openai")

	ttlString := v.GetString("problem.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid problem cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("execution_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}
	compileMs := v.GetInt("compile_timeout_ms")
	if compileMs <= 0 {
		compileMs = 30000
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSURL:               v.GetString("nats.url"),
		JWTSecret:             v.GetString("jwt.secret"),
		DockerHost:            v.GetString("docker_host"),
		ExecutionTimeout:      time.Duration(timeoutMs) * time.Millisecond,
		CompileTimeout:        time.Duration(compileMs) * time.Millisecond,
		CodeRunMemoryMB:       v.GetInt("code_run_memory_mb"),
		CodeRunCPUShares:      v.GetInt("code_run_cpu_shares"),
		MaxConcurrentSessions: v.GetInt("max_concurrent_sessions"),
		WorkspaceRoot:         v.GetString("workspace_root"),
		ProblemCacheTTL:       ttl,
		ExecuteRateLimit:      v.GetInt("execute_rate_limit"),
		SubmitRateLimit:       v.GetInt("submit_rate_limit"),
		AIProvider:            strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:          v.GetString("openai_api_key"),
		AnthropicAPIKey:       v.GetString("anthropic_api_key"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.CodeRunMemoryMB <= 0 {
		cfg.CodeRunMemoryMB = 128
	}

	if cfg.CodeRunCPUShares <= 0 {
		cfg.CodeRunCPUShares = 512
	}

	return cfg, nil
}
