package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM       LLMConfig
	Retry     RetryConfig
	Pipeline  PipelineConfig
	Reference ReferenceConfig
	Log       LogConfig
	S3        S3Config
	DB        DBConfig
	Email     EmailConfig
	Export    ExportConfig
}

// LLMProviderConfig holds settings for a single LLM provider.
type LLMProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	BaseURL      string  `mapstructure:"base_url"`
	Region       string  `mapstructure:"region"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
}

// LLMConfig holds the ordered provider chain. Only Primary is required.
type LLMConfig struct {
	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
	Tertiary  LLMProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order.
func (c *LLMConfig) Providers() []*LLMProviderConfig {
	out := []*LLMProviderConfig{&c.Primary}
	if c.Secondary.Provider != "" {
		out = append(out, &c.Secondary)
	}
	if c.Tertiary.Provider != "" {
		out = append(out, &c.Tertiary)
	}
	return out
}

// RetryConfig holds the rate-limit backoff schedule.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
}

// PipelineConfig holds batch run settings.
type PipelineConfig struct {
	Input           string        `mapstructure:"input"`
	Output          string        `mapstructure:"output"`
	RunName         string        `mapstructure:"run_name"`
	CheckpointStore string        `mapstructure:"checkpoint_store"`
	CheckpointPath  string        `mapstructure:"checkpoint_path"`
	CheckpointEvery int           `mapstructure:"checkpoint_every"`
	ClearCheckpoint bool          `mapstructure:"clear_checkpoint"`
	EmailDelay      time.Duration `mapstructure:"email_delay"`
}

// ReferenceConfig points at the port reference data.
type ReferenceConfig struct {
	PortsFile     string `mapstructure:"ports_file"`
	OverridesFile string `mapstructure:"overrides_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// S3Config holds AWS S3 settings for the object-storage checkpoint store.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// DBConfig holds PostgreSQL connection settings for the database checkpoint store.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// EmailConfig holds run-summary notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// ExportConfig selects the output format. An empty Format derives it from the
// output file extension.
type ExportConfig struct {
	Format string `mapstructure:"format"`
}

// Load reads configuration from a .env file (if present) and environment
// variables with the FREIGHTX_ prefix.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an optional YAML/JSON/TOML config file. Environment
// variables take precedence over file values.
func LoadFile(path string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FREIGHTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, "FREIGHTX_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	cfg := &Config{}

	cfg.LLM = LLMConfig{
		Primary:   providerConfig(v, "llm.primary"),
		Secondary: providerConfig(v, "llm.secondary"),
		Tertiary:  providerConfig(v, "llm.tertiary"),
	}
	// Groq setups often export only GROQ_API_KEY.
	if cfg.LLM.Primary.APIKey == "" && cfg.LLM.Primary.Provider == "groq" {
		cfg.LLM.Primary.APIKey = os.Getenv("GROQ_API_KEY")
	}

	cfg.Retry = RetryConfig{
		MaxAttempts:  v.GetInt("retry.max_attempts"),
		InitialDelay: v.GetDuration("retry.initial_delay"),
		MaxDelay:     v.GetDuration("retry.max_delay"),
		Multiplier:   v.GetFloat64("retry.multiplier"),
	}
	cfg.Pipeline = PipelineConfig{
		Input:           v.GetString("pipeline.input"),
		Output:          v.GetString("pipeline.output"),
		RunName:         v.GetString("pipeline.run_name"),
		CheckpointStore: v.GetString("pipeline.checkpoint_store"),
		CheckpointPath:  v.GetString("pipeline.checkpoint_path"),
		CheckpointEvery: v.GetInt("pipeline.checkpoint_every"),
		ClearCheckpoint: v.GetBool("pipeline.clear_checkpoint"),
		EmailDelay:      v.GetDuration("pipeline.email_delay"),
	}
	cfg.Reference = ReferenceConfig{
		PortsFile:     v.GetString("reference.ports_file"),
		OverridesFile: v.GetString("reference.overrides_file"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Prefix:    v.GetString("s3.prefix"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ToAddress:   v.GetString("email.to_address"),
	}
	cfg.Export = ExportConfig{
		Format: v.GetString("export.format"),
	}

	if cfg.Pipeline.CheckpointEvery <= 0 {
		cfg.Pipeline.CheckpointEvery = 1
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// LLM defaults: Groq's OpenAI-compatible endpoint, deterministic sampling
	v.SetDefault("llm.primary.provider", "groq")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.default_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.primary.base_url", "")
	v.SetDefault("llm.primary.region", "")
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.primary.temperature", 0.0)
	v.SetDefault("llm.primary.max_tokens", 1024)
	for _, tier := range []string{"secondary", "tertiary"} {
		v.SetDefault("llm."+tier+".provider", "")
		v.SetDefault("llm."+tier+".api_key", "")
		v.SetDefault("llm."+tier+".default_model", "")
		v.SetDefault("llm."+tier+".base_url", "")
		v.SetDefault("llm."+tier+".region", "")
		v.SetDefault("llm."+tier+".timeout_secs", 120)
		v.SetDefault("llm."+tier+".temperature", 0.0)
		v.SetDefault("llm."+tier+".max_tokens", 1024)
	}

	// Retry defaults
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_delay", "2s")
	v.SetDefault("retry.max_delay", "10m")
	v.SetDefault("retry.multiplier", 2.0)

	// Pipeline defaults
	v.SetDefault("pipeline.input", "emails_input.json")
	v.SetDefault("pipeline.output", "output.json")
	v.SetDefault("pipeline.run_name", "default")
	v.SetDefault("pipeline.checkpoint_store", "file")
	v.SetDefault("pipeline.checkpoint_path", "checkpoint.json")
	v.SetDefault("pipeline.checkpoint_every", 1)
	v.SetDefault("pipeline.clear_checkpoint", true)
	v.SetDefault("pipeline.email_delay", "1s")

	// Reference defaults
	v.SetDefault("reference.ports_file", "port_codes_reference.json")
	v.SetDefault("reference.overrides_file", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "freightx-checkpoints")
	v.SetDefault("s3.prefix", "checkpoints")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "freightx")
	v.SetDefault("db.password", "freightx_secret")
	v.SetDefault("db.name", "freightx_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 5)
	v.SetDefault("db.max_idle", 2)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@freightx.local")
	v.SetDefault("email.from_name", "freightx")
	v.SetDefault("email.to_address", "")

	// Export defaults
	v.SetDefault("export.format", "")
}

func providerConfig(v *viper.Viper, prefix string) LLMProviderConfig {
	return LLMProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		BaseURL:      v.GetString(prefix + ".base_url"),
		Region:       v.GetString(prefix + ".region"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		Temperature:  v.GetFloat64(prefix + ".temperature"),
		MaxTokens:    v.GetInt(prefix + ".max_tokens"),
	}
}
