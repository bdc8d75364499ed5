package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig 远程 API 服务配置
// ServerConfig describes the remote task API
type ServerConfig struct {
	BaseURL   string `json:"base_url"`
	TimeoutMS int    `json:"timeout_ms"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type UIConfig struct {
	Locale string `json:"locale"`
}

// RetentionConfig 本地会话保留策略
// RetentionConfig bounds locally stored chat conversations
type RetentionConfig struct {
	MaxConversations int `json:"max_conversations"`
}

type Config struct {
	Server    ServerConfig    `json:"server"`
	Storage   StorageConfig   `json:"storage"`
	UI        UIConfig        `json:"ui"`
	Retention RetentionConfig `json:"retention"`
}

// fileConfig 使用指针字段区分"未设置"和"零值"
// fileConfig uses pointer fields to distinguish unset from zero
type fileConfig struct {
	Server *struct {
		BaseURL   *string `json:"base_url"`
		TimeoutMS *int    `json:"timeout_ms"`
	} `json:"server"`
	Storage *struct {
		BaseDir *string `json:"base_dir"`
	} `json:"storage"`
	UI *struct {
		Locale *string `json:"locale"`
	} `json:"ui"`
	Retention *struct {
		MaxConversations *int `json:"max_conversations"`
	} `json:"retention"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:   "http://localhost:8000",
			TimeoutMS: DefaultServerTimeoutMS,
		},
		Storage:   StorageConfig{BaseDir: "~/.taskdeck"},
		UI:        UIConfig{Locale: ""},
		Retention: RetentionConfig{MaxConversations: DefaultMaxConversations},
	}
}

// Load 按 默认值 → 全局配置 → 指定配置 → .env/环境变量 的顺序合并配置
// Load merges defaults, the global config file, an explicit config file,
// and finally .env plus environment overrides
func Load(path string) (Config, error) {
	// .env 仅补充缺失的环境变量 / .env only fills missing env vars
	_ = godotenv.Load()

	cfg := Default()

	if err := mergeFromFile(&cfg, globalConfigPath()); err != nil {
		return Config{}, err
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	cfg, err := applyEnv(cfg)
	if err != nil {
		return Config{}, err
	}
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskdeck", "config.json")
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fc fileConfig
	if err := json.Unmarshal(cleaned, &fc); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fc)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Server != nil {
		if fc.Server.BaseURL != nil {
			cfg.Server.BaseURL = *fc.Server.BaseURL
		}
		if fc.Server.TimeoutMS != nil {
			cfg.Server.TimeoutMS = *fc.Server.TimeoutMS
		}
	}
	if fc.Storage != nil && fc.Storage.BaseDir != nil {
		cfg.Storage.BaseDir = *fc.Storage.BaseDir
	}
	if fc.UI != nil && fc.UI.Locale != nil {
		cfg.UI.Locale = *fc.UI.Locale
	}
	if fc.Retention != nil && fc.Retention.MaxConversations != nil {
		cfg.Retention.MaxConversations = *fc.Retention.MaxConversations
	}
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("TASKDECK_SERVER_URL")); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDECK_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid TASKDECK_TIMEOUT_MS: %q", v)
		}
		cfg.Server.TimeoutMS = n
	}
	if v := strings.TrimSpace(os.Getenv("TASKDECK_STORAGE_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDECK_LANG")); v != "" {
		cfg.UI.Locale = v
	}
	return cfg, nil
}

func normalize(cfg *Config) error {
	base := strings.TrimSpace(cfg.Server.BaseURL)
	if base == "" {
		return fmt.Errorf("server base_url is empty")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid server base_url: %q", base)
	}
	cfg.Server.BaseURL = strings.TrimRight(base, "/")

	if cfg.Server.TimeoutMS <= 0 {
		cfg.Server.TimeoutMS = DefaultServerTimeoutMS
	}
	if cfg.Retention.MaxConversations <= 0 {
		cfg.Retention.MaxConversations = DefaultMaxConversations
	}

	dir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("expand storage dir %q: %w", cfg.Storage.BaseDir, err)
	}
	if dir == "" {
		return fmt.Errorf("storage base_dir is empty")
	}
	cfg.Storage.BaseDir = dir
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// stripJSONComments 去掉 // 和 /* */ 注释，字符串字面量内的内容保持不变
// stripJSONComments removes // and /* */ comments outside string literals
func stripJSONComments(data []byte) []byte {
	var out bytes.Buffer
	inString := false
	inLineComment := false
	inBlockComment := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		switch {
		case inLineComment:
			if c == '\n' {
				inLineComment = false
				out.WriteByte(c)
			}
		case inBlockComment:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				inBlockComment = false
				i++
			}
		case inString:
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		default:
			if c == '"' {
				inString = true
				out.WriteByte(c)
			} else if c == '/' && i+1 < len(data) && data[i+1] == '/' {
				inLineComment = true
				i++
			} else if c == '/' && i+1 < len(data) && data[i+1] == '*' {
				inBlockComment = true
				i++
			} else {
				out.WriteByte(c)
			}
		}
	}
	return out.Bytes()
}
