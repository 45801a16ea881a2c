package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	Port             int
	Model            string
	AnalysisTimeout  time.Duration
	OpenRouterAPIKey string
	OpenRouterURL    string
	Prompt           string
	LogLevel         string
	Verbose          bool
	Quiet            bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheFile string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// DefaultOpenRouterURL is the chat-completions endpoint the analysis engine
// talks to. OpenRouter speaks the OpenAI wire protocol.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config
// directory and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt checks if a prompt.txt file exists in the XDG config
// directory and creates it from the embedded default if it doesn't exist
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "prompt template")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// .env support mirrors the deployment convention: the API key usually
	// lives in a local .env rather than the shell environment.
	_ = godotenv.Load()

	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "clipgenius")
	dataDir := filepath.Join(xdg.DataHome, "clipgenius")

	v := viper.New()

	// Set default values for configurable settings
	v.SetDefault("port", 8000)
	v.SetDefault("model", "google/gemini-2.0-flash-exp:free")
	v.SetDefault("analysis_timeout", time.Minute)
	v.SetDefault("openrouter_url", DefaultOpenRouterURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("prompt", "") // if empty will use default prompt template

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("CLIPGENIUS")
	v.AutomaticEnv()

	// The analysis-engine credential is looked up under its conventional
	// name as well. Its absence is only an error once an analysis is
	// actually attempted, never at startup.
	_ = v.BindEnv("openrouter_api_key", "OPENROUTER_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		Port:             v.GetInt("port"),
		Model:            v.GetString("model"),
		AnalysisTimeout:  v.GetDuration("analysis_timeout"),
		OpenRouterAPIKey: v.GetString("openrouter_api_key"),
		OpenRouterURL:    v.GetString("openrouter_url"),
		Prompt:           v.GetString("prompt"),
		LogLevel:         v.GetString("log_level"),
		Verbose:          v.GetBool("verbose"),
		Quiet:            v.GetBool("quiet"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheFile: filepath.Join(dataDir, "cache.json"),
	}

	return config
}
