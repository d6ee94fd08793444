// Package config loads the application configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

// Session defaults mirror the behavior the dashboard UI was tuned against:
// a profile read is abandoned after 10s, and a hung bootstrap may hold the
// loading state for at most 5s.
const (
	defaultProfileFetchTimeout = 10 * time.Second
	defaultBootstrapGuard      = 5 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres"`

	Identity *IdentityConfig `json:"identity" yaml:"identity"`

	Session SessionConfig `json:"session" yaml:"session"`

	Cache CacheConfig `json:"cache" yaml:"cache"`

	Storage *StorageConfig `json:"storage" yaml:"storage"`

	Admin AdminConfig `json:"admin" yaml:"admin"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PostgresConfig describes the connection to the backend's row stores.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	UserName string `json:"userName" yaml:"userName"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSLMode  string `json:"sslMode" yaml:"sslMode"`

	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
}

// IdentityConfig describes the remote identity provider.
type IdentityConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string `json:"apiKey" yaml:"apiKey"`

	// RefreshTokenPath is where the persisted refresh token lives between
	// runs; empty disables session restoration.
	RefreshTokenPath string `json:"refreshTokenPath" yaml:"refreshTokenPath"`
}

// SessionConfig bounds the session manager's asynchronous work.
type SessionConfig struct {
	// ProfileFetchTimeout bounds a single profile read; an overdue read is
	// abandoned and treated as profile-unavailable.
	ProfileFetchTimeout time.Duration `json:"profileFetchTimeout" yaml:"profileFetchTimeout"`

	// BootstrapGuard caps how long bootstrap may hold loading=true even if
	// the identity call never settles.
	BootstrapGuard time.Duration `json:"bootstrapGuard" yaml:"bootstrapGuard"`
}

// CacheConfig holds per-resource stale times for the read cache.
type CacheConfig struct {
	CommentsStale      time.Duration `json:"commentsStale" yaml:"commentsStale"`
	PostsStale         time.Duration `json:"postsStale" yaml:"postsStale"`
	PostStale          time.Duration `json:"postStale" yaml:"postStale"`
	WeeklyLogsStale    time.Duration `json:"weeklyLogsStale" yaml:"weeklyLogsStale"`
	ChallengeStale     time.Duration `json:"challengeStale" yaml:"challengeStale"`
	NotificationsStale time.Duration `json:"notificationsStale" yaml:"notificationsStale"`
}

// StorageConfig describes the object store for photos and avatars.
type StorageConfig struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"accessKeyId" yaml:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey"`
	UseSSL          bool   `json:"useSsl" yaml:"useSsl"`

	WeeklyLogBucket string `json:"weeklyLogBucket" yaml:"weeklyLogBucket"`
	MediaBucket     string `json:"mediaBucket" yaml:"mediaBucket"`
	AvatarBucket    string `json:"avatarBucket" yaml:"avatarBucket"`

	SignedURLExpiry time.Duration `json:"signedUrlExpiry" yaml:"signedUrlExpiry"`
}

// AdminConfig identifies the challenge organizer.
type AdminConfig struct {
	UserID string `json:"userId" yaml:"userId"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Session.ProfileFetchTimeout <= 0 {
		cfg.Session.ProfileFetchTimeout = defaultProfileFetchTimeout
	}
	if cfg.Session.BootstrapGuard <= 0 {
		cfg.Session.BootstrapGuard = defaultBootstrapGuard
	}

	if cfg.Cache.CommentsStale <= 0 {
		cfg.Cache.CommentsStale = 30 * time.Second
	}
	if cfg.Cache.PostsStale <= 0 {
		cfg.Cache.PostsStale = 2 * time.Minute
	}
	if cfg.Cache.PostStale <= 0 {
		cfg.Cache.PostStale = time.Minute
	}
	if cfg.Cache.WeeklyLogsStale <= 0 {
		cfg.Cache.WeeklyLogsStale = 5 * time.Minute
	}
	if cfg.Cache.ChallengeStale <= 0 {
		cfg.Cache.ChallengeStale = 5 * time.Minute
	}
	if cfg.Cache.NotificationsStale <= 0 {
		cfg.Cache.NotificationsStale = 30 * time.Second
	}

	if cfg.Storage != nil && cfg.Storage.SignedURLExpiry <= 0 {
		cfg.Storage.SignedURLExpiry = time.Hour
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
