package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr string
}

type StorageConfig struct {
	Path string
	// ConnectionMode is "pool" or "per_operation".
	ConnectionMode string
}

type StreamConfig struct {
	Buffer int
}

type ProviderConfig struct {
	ID          string
	Name        string
	Description string
	IconName    string
}

type CountsConfig struct {
	// ByParentList switches read_task_count_from_list to filter on the
	// parent_list column instead of id_task.
	ByParentList bool
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type ReminderConfig struct {
	Buffer int
}

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Stream    StreamConfig
	Provider  ProviderConfig
	Counts    CountsConfig
	RateLimit RateLimitConfig
	Reminder  ReminderConfig
}

func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: "127.0.0.1:8990"},
		Storage: StorageConfig{Path: "tasklistd.db", ConnectionMode: "pool"},
		Stream:  StreamConfig{Buffer: 4},
		Provider: ProviderConfig{
			ID:          "tasklistd",
			Name:        "Task Lists",
			Description: "Local task and list provider",
			IconName:    "checklist",
		},
		RateLimit: RateLimitConfig{Enabled: true, RPS: 30, Burst: 60},
		Reminder:  ReminderConfig{Buffer: 64},
	}
}

// fileConfig is the YAML shape. Booleans are pointers so an absent key can
// be told apart from an explicit false.
type fileConfig struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Storage struct {
		Path           string `yaml:"path"`
		ConnectionMode string `yaml:"connection_mode"`
	} `yaml:"storage"`
	Stream struct {
		Buffer int `yaml:"buffer"`
	} `yaml:"stream"`
	Provider struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		IconName    string `yaml:"icon_name"`
	} `yaml:"provider"`
	Counts struct {
		ByParentList *bool `yaml:"by_parent_list"`
	} `yaml:"counts"`
	RateLimit struct {
		Enabled *bool   `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Reminder struct {
		Buffer int `yaml:"buffer"`
	} `yaml:"reminder"`
}

// LoadFromPath loads the defaults, merges the first readable candidate file
// over them, and applies TASKLISTD_* environment overrides. A .env file in
// the working directory is honored before the environment is read.
func LoadFromPath(configPath string) Config {
	_ = godotenv.Load(".env")

	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"tasklistd.yaml",
			"configs/tasklistd.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		merge(&cfg, parsed)
		break
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func merge(dst *Config, src fileConfig) {
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Storage.Path != "" {
		dst.Storage.Path = src.Storage.Path
	}
	if src.Storage.ConnectionMode != "" {
		dst.Storage.ConnectionMode = src.Storage.ConnectionMode
	}
	if src.Stream.Buffer > 0 {
		dst.Stream.Buffer = src.Stream.Buffer
	}
	if src.Provider.ID != "" {
		dst.Provider.ID = src.Provider.ID
	}
	if src.Provider.Name != "" {
		dst.Provider.Name = src.Provider.Name
	}
	if src.Provider.Description != "" {
		dst.Provider.Description = src.Provider.Description
	}
	if src.Provider.IconName != "" {
		dst.Provider.IconName = src.Provider.IconName
	}
	if src.Counts.ByParentList != nil {
		dst.Counts.ByParentList = *src.Counts.ByParentList
	}
	if src.RateLimit.Enabled != nil {
		dst.RateLimit.Enabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.RPS > 0 {
		dst.RateLimit.RPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst > 0 {
		dst.RateLimit.Burst = src.RateLimit.Burst
	}
	if src.Reminder.Buffer > 0 {
		dst.Reminder.Buffer = src.Reminder.Buffer
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TASKLISTD_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKLISTD_DB_PATH")); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKLISTD_CONNECTION_MODE")); v != "" {
		cfg.Storage.ConnectionMode = v
	}
	if v, ok := getEnvInt("TASKLISTD_STREAM_BUFFER"); ok && v > 0 {
		cfg.Stream.Buffer = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKLISTD_PROVIDER_NAME")); v != "" {
		cfg.Provider.Name = v
	}
	if v, ok := getEnvBool("TASKLISTD_COUNT_BY_PARENT_LIST"); ok {
		cfg.Counts.ByParentList = v
	}
	if v, ok := getEnvBool("TASKLISTD_RATE_LIMIT_ENABLED"); ok {
		cfg.RateLimit.Enabled = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKLISTD_RATE_LIMIT_RPS")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			cfg.RateLimit.RPS = parsed
		}
	}
	if v, ok := getEnvInt("TASKLISTD_RATE_LIMIT_BURST"); ok && v > 0 {
		cfg.RateLimit.Burst = v
	}
	if v, ok := getEnvInt("TASKLISTD_REMINDER_BUFFER"); ok && v > 0 {
		cfg.Reminder.Buffer = v
	}
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
