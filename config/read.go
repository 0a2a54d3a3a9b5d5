package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/sarahsindone/sbrp-application/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	setDefaults(v)

	// Allow env vars to override config values.
	// e.g. SBRP_DATABASE_MONGO_URI overrides database.mongo.uri
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Container deployments may configure everything through the environment.
		if os.Getenv(constants.EnvPrefix+"_DATABASE_DRIVER") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// setDefaults registers every key viper should know about so AutomaticEnv can
// override values that are absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.mongo.name", "sbrp")
	v.SetDefault("database.mongo.max_pool_size", 50)
	v.SetDefault("database.mongo.connect_timeout_seconds", 10)
	v.SetDefault("database.mongo.operation_timeout_seconds", 5)

	v.SetDefault("casbin_database.host", "localhost")
	v.SetDefault("casbin_database.port", 5432)
	v.SetDefault("casbin_database.user", "")
	v.SetDefault("casbin_database.password", "")
	v.SetDefault("casbin_database.dbname", "sbrp_casbin")
	v.SetDefault("casbin_database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.app_name", "SBRP")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.timeout_seconds", 10)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.body_limit_mb", 12)
	v.SetDefault("server.rate_limit.requests_per_window", 20)
	v.SetDefault("server.rate_limit.window_seconds", 30)

	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.issuer", "sbrp")
	v.SetDefault("authentication.paseto.audience", "sbrp-api")
	v.SetDefault("authentication.paseto.access_ttl_minutes", 15)
	v.SetDefault("authentication.paseto.refresh_ttl_days", 30)
	v.SetDefault("authentication.min_password_length", 8)

	v.SetDefault("authorization.casbin_model_path", "")
	v.SetDefault("authorization.policy_path", "")
	v.SetDefault("authorization.health_check_enabled", true)
	v.SetDefault("authorization.enable_audit", true)
	v.SetDefault("authorization.admin_bypass", true)

	v.SetDefault("password.algorithm", "argon2id")

	v.SetDefault("observability.service_name", "sbrp-application")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)

	v.SetDefault("s3.presign_ttl_sec", 300)

	v.SetDefault("reports.number_prefix", "SBRP")
	v.SetDefault("reports.default_title_format", "Restructuring Proposal for %s")
	v.SetDefault("reports.max_artifact_size_mb", 10)
}
