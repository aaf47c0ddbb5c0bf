// Package config は起動時に一度だけアプリケーション設定を読み込みます。
//
// 読み込み順は .env（任意）、環境変数、secrets.toml（APIキーのみ）です。
// 構築後のConfigは値として各コンポーネントへ渡し、以後変更しません。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// ErrMissingAPIKey はPl@ntNet APIキーがどこにも設定されていない場合に返されます。
var ErrMissingAPIKey = errors.New("API key not found or secrets.toml misconfigured")

// DefaultSecretsFile はAPIキーのフォールバック読み込み先です。
const DefaultSecretsFile = "secrets.toml"

// PlantNet はリモート識別APIの設定です。
type PlantNet struct {
	APIKey  string
	BaseURL string
	Project string
	Timeout time.Duration
}

// Normalizer は画像正規化の設定です。0は既定値を意味します。
type Normalizer struct {
	MaxDimension   int
	Quality        int
	MaxUploadBytes int
	MaxPixels      int
}

// RateLimit はクライアント単位のリクエスト制限です。
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Redis は共有レート制限カウンタの接続先です。Addrが空なら使用しません。
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Gemini は種の解説生成の設定です。
type Gemini struct {
	Enabled bool
	Model   string
}

// Config はアプリケーション全体の設定です。
type Config struct {
	Port           string
	LogLevel       slog.Level
	PlantNet       PlantNet
	Normalizer     Normalizer
	RequestTimeout time.Duration
	RateLimit      RateLimit
	JWTSecret      string
	CORSOrigins    []string
	Redis          Redis
	Gemini         Gemini
}

type secretsFile struct {
	PlantNet struct {
		APIKey string `toml:"api_key"`
	} `toml:"plantnet"`
}

// Load は .env と環境変数から設定を構築します。
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv はgetenvから設定を構築します。値の形式が不正な場合はエラーを返します。
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	cfg := Config{
		Port:     p.str("PORT", "8080"),
		LogLevel: p.level("LOG_LEVEL", slog.LevelInfo),
		PlantNet: PlantNet{
			APIKey:  strings.TrimSpace(getenv("PLANTNET_API_KEY")),
			BaseURL: getenv("PLANTNET_BASE_URL"),
			Project: getenv("PLANTNET_PROJECT"),
			Timeout: p.duration("PLANTNET_TIMEOUT", 45*time.Second),
		},
		Normalizer: Normalizer{
			MaxDimension:   p.intVal("IMAGE_MAX_DIMENSION", 0),
			Quality:        p.intVal("IMAGE_JPEG_QUALITY", 0),
			MaxUploadBytes: p.intVal("IMAGE_MAX_UPLOAD_BYTES", 0),
			MaxPixels:      p.intVal("IMAGE_MAX_PIXELS", 0),
		},
		RequestTimeout: p.duration("IDENTIFY_TIMEOUT", 45*time.Second),
		RateLimit: RateLimit{
			Limit:  p.intVal("RATE_LIMIT", 30),
			Window: p.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		JWTSecret:   getenv("JWT_SECRET"),
		CORSOrigins: p.list("CORS_ALLOWED_ORIGINS"),
		Redis: Redis{
			Addr:     redisAddr(getenv("REDIS_HOST"), getenv("REDIS_PORT")),
			Password: getenv("REDIS_PASSWORD"),
			DB:       p.intVal("REDIS_DB", 0),
		},
		Gemini: Gemini{
			Enabled: p.boolVal("GEMINI_ENABLED", false),
			Model:   getenv("GEMINI_MODEL"),
		},
	}
	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}

	if cfg.PlantNet.APIKey == "" {
		key, err := apiKeyFromSecrets(p.str("SECRETS_FILE", DefaultSecretsFile))
		if err != nil {
			return Config{}, err
		}
		cfg.PlantNet.APIKey = key
	}
	if q := cfg.Normalizer.Quality; q < 0 || q > 100 {
		return Config{}, fmt.Errorf("IMAGE_JPEG_QUALITY must be within 1..100, got %d", q)
	}
	return cfg, nil
}

func apiKeyFromSecrets(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingAPIKey, err)
	}
	var s secretsFile
	if err := toml.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingAPIKey, err)
	}
	key := strings.TrimSpace(s.PlantNet.APIKey)
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

func redisAddr(host, port string) string {
	if host == "" {
		return ""
	}
	if port == "" {
		port = "6379"
	}
	return host + ":" + port
}

// parser は最初の不正値で止まらず、全てのエラーをまとめて返します。
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := p.getenv(key); v != "" {
		return v
	}
	return def
}

func (p *parser) intVal(key string, def int) int {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) boolVal(key string, def bool) bool {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid log level %q", key, v))
		return def
	}
	return l
}

func (p *parser) list(key string) []string {
	var out []string
	for _, s := range strings.Split(p.getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
