package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	llmdispatch "github.com/weftlabs/weft-llm-go"
	anthropicadapter "github.com/weftlabs/weft-llm-go/providers/anthropic"
	"github.com/weftlabs/weft-llm-go/providers/lorem"
	"github.com/weftlabs/weft-llm-go/providers/openaicompat"
)

// loadEnv searches for a .env file from the working directory upward
// and loads the first one found. Missing files are fine; system env
// vars still apply.
func loadEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// defaultCachePath resolves the on-disk cache location: WEFT_CACHE if
// set, otherwise ~/.weft/cache.db.
func defaultCachePath() (string, error) {
	if path := os.Getenv("WEFT_CACHE"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache path: %w", err)
	}
	dir := filepath.Join(home, ".weft")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	return filepath.Join(dir, "cache.db"), nil
}

// buildAdapters wires up every provider adapter whose credentials are
// present in the environment. The lorem mock and a local Ollama target
// are always registered; hosted providers need their API keys.
func buildAdapters(log zerolog.Logger) *llmdispatch.AdapterRegistry {
	registry := llmdispatch.NewAdapterRegistry(lorem.New())

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		adapter, err := anthropicadapter.New(key)
		if err != nil {
			log.Warn().Err(err).Msg("anthropic adapter unavailable")
		} else {
			registry.Register(adapter)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		adapter, err := openaicompat.NewOpenAI(key)
		if err != nil {
			log.Warn().Err(err).Msg("openai adapter unavailable")
		} else {
			registry.Register(adapter)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		adapter, err := openaicompat.NewGoogle(key)
		if err != nil {
			log.Warn().Err(err).Msg("google adapter unavailable")
		} else {
			registry.Register(adapter)
		}
	}

	var ollamaOpts []openaicompat.Option
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		ollamaOpts = append(ollamaOpts, openaicompat.WithBaseURL(host+"/v1"))
	}
	if adapter, err := openaicompat.NewOllama(ollamaOpts...); err == nil {
		registry.Register(adapter)
	}

	return registry
}
