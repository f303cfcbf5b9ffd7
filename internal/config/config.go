package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Transcription engines and summary providers accepted in configuration.
const (
	EngineLocal = "local"
	EngineCloud = "cloud"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Transcribe  TranscribeConfig  `yaml:"transcribe"`
	Summary     SummaryConfig     `yaml:"summary"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Notion      NotionConfig      `yaml:"notion"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`

	// settingsMu guards the OpenAI, Gemini and Notion sections once the config is shared
	settingsMu sync.RWMutex
}

// Services is a copy of the settings the dashboards can change at runtime.
type Services struct {
	OpenAI OpenAIConfig
	Gemini GeminiConfig
	Notion NotionConfig
}

// Services returns a consistent copy of the service settings.
func (c *Config) Services() Services {
	c.settingsMu.RLock()
	defer c.settingsMu.RUnlock()
	return Services{OpenAI: c.OpenAI, Gemini: c.Gemini, Notion: c.Notion}
}

type PathsConfig struct {
	Sessions string `yaml:"sessions"`
	State    string `yaml:"state"`
	Inbox    string `yaml:"inbox"`
	Exports  string `yaml:"exports"`
	EnvFile  string `yaml:"env_file"`
}

type FFmpegConfig struct {
	BinaryPath  string        `yaml:"binary_path"`
	InputFormat string        `yaml:"input_format"`
	SampleRate  int           `yaml:"sample_rate"`
	Channels    int           `yaml:"channels"`
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
	UseGPU     bool   `yaml:"use_gpu"`
}

type TranscribeConfig struct {
	Engine   string `yaml:"engine"`
	Language string `yaml:"language"`
}

type SummaryConfig struct {
	Provider           string  `yaml:"provider"`
	Temperature        float32 `yaml:"temperature"`
	MaxTranscriptChars int     `yaml:"max_transcript_chars"`
	Publish            bool    `yaml:"publish"`
}

// OpenAIConfig holds the OpenAI settings. The key only comes from the environment.
type OpenAIConfig struct {
	APIKey          string `yaml:"-"`
	BaseURL         string `yaml:"base_url"`
	SummaryModel    string `yaml:"summary_model"`
	TranscribeModel string `yaml:"transcribe_model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
}

type NotionConfig struct {
	Token      string `yaml:"-"`
	DatabaseID string `yaml:"database_id"`
}

type DashboardConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Validate fills defaults and rejects values no component can work with.
func (c *Config) Validate() error {
	if c.FFmpeg.SampleRate < 0 {
		return fmt.Errorf("ffmpeg.sample_rate must be >= 0, got %d", c.FFmpeg.SampleRate)
	}
	if c.FFmpeg.Channels < 0 || c.FFmpeg.Channels > 2 {
		return fmt.Errorf("ffmpeg.channels must be 1 or 2, got %d", c.FFmpeg.Channels)
	}
	if c.Summary.MaxTranscriptChars < 0 {
		return fmt.Errorf("summary.max_transcript_chars must be >= 0, got %d", c.Summary.MaxTranscriptChars)
	}

	engine, err := NormalizeEngine(c.Transcribe.Engine)
	if err != nil {
		return err
	}
	c.Transcribe.Engine = engine

	provider := strings.ToLower(strings.TrimSpace(c.Summary.Provider))
	switch provider {
	case "":
		provider = ProviderOpenAI
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("summary.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Summary.Provider)
	}
	c.Summary.Provider = provider

	if c.Paths.Sessions == "" {
		c.Paths.Sessions = "sessions"
	}
	if c.Paths.State == "" {
		c.Paths.State = "state"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "inbox"
	}
	if c.Paths.Exports == "" {
		c.Paths.Exports = "exports"
	}
	if c.Paths.EnvFile == "" {
		c.Paths.EnvFile = ".env"
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.InputFormat == "" {
		c.FFmpeg.InputFormat = "avfoundation"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 48000
	}
	if c.FFmpeg.Channels == 0 {
		c.FFmpeg.Channels = 1
	}
	if c.FFmpeg.StopTimeout <= 0 {
		c.FFmpeg.StopTimeout = 10 * time.Second
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = "models/ggml-small.bin"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Transcribe.Language == "" {
		c.Transcribe.Language = "ru"
	}
	if c.Summary.Temperature == 0 {
		c.Summary.Temperature = 0.3
	}
	if c.Summary.MaxTranscriptChars == 0 {
		c.Summary.MaxTranscriptChars = 15000
	}
	if c.OpenAI.SummaryModel == "" {
		c.OpenAI.SummaryModel = "gpt-4o-mini"
	}
	if c.OpenAI.TranscribeModel == "" {
		c.OpenAI.TranscribeModel = "whisper-1"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = "127.0.0.1:8501"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}

	return nil
}

// NormalizeEngine maps user input onto EngineLocal or EngineCloud.
// "openai" is accepted as an alias of the cloud engine.
func NormalizeEngine(engine string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineLocal:
		return EngineLocal, nil
	case EngineCloud, "openai":
		return EngineCloud, nil
	default:
		return "", fmt.Errorf("transcribe.engine must be %q or %q, got %q", EngineLocal, EngineCloud, engine)
	}
}
