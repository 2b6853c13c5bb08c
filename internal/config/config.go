package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the service. Values are assembled
// once at startup from flags, environment, and an optional YAML file, then
// validated; components receive what they need at construction time.
type Config struct {
	ListenAddr string `yaml:"listen"`

	LLM struct {
		BaseURL      string `yaml:"base"`
		Model        string `yaml:"model"`
		APIKey       string `yaml:"key"`
		WhisperModel string `yaml:"whisperModel"`
	} `yaml:"llm"`

	Lookup struct {
		BaseURL string `yaml:"base"`
		APIKey  string `yaml:"key"`
		APIHost string `yaml:"host"`
	} `yaml:"lookup"`

	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	Media struct {
		YtDlpPath  string `yaml:"ytdlp"`
		FFmpegPath string `yaml:"ffmpeg"`
	} `yaml:"media"`

	Timeouts struct {
		Download   time.Duration `yaml:"download"`
		Transcribe time.Duration `yaml:"transcribe"`
		Extract    time.Duration `yaml:"extract"`
	} `yaml:"timeouts"`

	AuthToken      string `yaml:"authToken"`
	MaxPromptChars int    `yaml:"maxPromptChars"`
	Verbose        bool   `yaml:"verbose"`
}

// Defaults fills unset values that have sensible fallbacks.
func (c *Config) Defaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8000"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "recipio"
	}
	if c.Timeouts.Download == 0 {
		c.Timeouts.Download = 2 * time.Minute
	}
	if c.Timeouts.Transcribe == 0 {
		c.Timeouts.Transcribe = 2 * time.Minute
	}
	if c.Timeouts.Extract == 0 {
		c.Timeouts.Extract = time.Minute
	}
}

// Validate reports missing required settings. A failed validation is
// startup-fatal; nothing defers credential problems to request time.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		problems = append(problems, "LLM API key is required (flag -llm.key or env LLM_API_KEY)")
	}
	if strings.TrimSpace(c.Mongo.URI) == "" {
		problems = append(problems, "Mongo URI is required (flag -mongo.uri or env MONGODB_URL)")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// MergeFile overlays settings from a YAML file. Values already set by flags
// or environment win over file values.
func (c *Config) MergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	merge(&c.ListenAddr, file.ListenAddr)
	merge(&c.LLM.BaseURL, file.LLM.BaseURL)
	merge(&c.LLM.Model, file.LLM.Model)
	merge(&c.LLM.APIKey, file.LLM.APIKey)
	merge(&c.LLM.WhisperModel, file.LLM.WhisperModel)
	merge(&c.Lookup.BaseURL, file.Lookup.BaseURL)
	merge(&c.Lookup.APIKey, file.Lookup.APIKey)
	merge(&c.Lookup.APIHost, file.Lookup.APIHost)
	merge(&c.Mongo.URI, file.Mongo.URI)
	merge(&c.Mongo.Database, file.Mongo.Database)
	merge(&c.Media.YtDlpPath, file.Media.YtDlpPath)
	merge(&c.Media.FFmpegPath, file.Media.FFmpegPath)
	merge(&c.AuthToken, file.AuthToken)
	if c.Timeouts.Download == 0 {
		c.Timeouts.Download = file.Timeouts.Download
	}
	if c.Timeouts.Transcribe == 0 {
		c.Timeouts.Transcribe = file.Timeouts.Transcribe
	}
	if c.Timeouts.Extract == 0 {
		c.Timeouts.Extract = file.Timeouts.Extract
	}
	if c.MaxPromptChars == 0 {
		c.MaxPromptChars = file.MaxPromptChars
	}
	return nil
}

func merge(dst *string, fromFile string) {
	if *dst == "" && fromFile != "" {
		*dst = fromFile
	}
}
