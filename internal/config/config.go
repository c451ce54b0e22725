package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	Logger      LoggerConfig
	Pipeline    PipelineConfig
	Generator   GeneratorConfig
	Tools       ToolsConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type LoggerConfig struct {
	Level string
	Env   string
}

// PipelineConfig holds the ceilings and retry policy of the quiz pipeline.
// All values are explicit so tests can substitute deterministic settings.
type PipelineConfig struct {
	QuestionCount       int
	TranscriptCharLimit int
	MaxAudioSeconds     float64
	MaxResponseBytes    int
	FetchTimeout        time.Duration
	TranscribeTimeout   time.Duration
	GenerateTimeout     time.Duration
	FetchRetries        int
	RetryBackoff        time.Duration
	MaxConcurrent       int64
	QuizCacheTTL        time.Duration
}

type GeneratorConfig struct {
	Source   string
	GoogleAI GoogleAIConfig
	Ollama   OllamaConfig
}

type GoogleAIConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	ServerURL string
	Model     string
}

// ToolsConfig points at the external binaries used by the media adapters.
type ToolsConfig struct {
	YtDlpPath       string
	WhisperPath     string
	WhisperModel    string
	FFprobePath     string
	WorkDir         string
	WhisperLanguage string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Pipeline: PipelineConfig{
			QuestionCount:       viper.GetInt("pipeline.question_count"),
			TranscriptCharLimit: viper.GetInt("pipeline.transcript_char_limit"),
			MaxAudioSeconds:     viper.GetFloat64("pipeline.max_audio_seconds"),
			MaxResponseBytes:    viper.GetInt("pipeline.max_response_bytes"),
			FetchTimeout:        viper.GetDuration("pipeline.fetch_timeout"),
			TranscribeTimeout:   viper.GetDuration("pipeline.transcribe_timeout"),
			GenerateTimeout:     viper.GetDuration("pipeline.generate_timeout"),
			FetchRetries:        viper.GetInt("pipeline.fetch_retries"),
			RetryBackoff:        viper.GetDuration("pipeline.retry_backoff"),
			MaxConcurrent:       viper.GetInt64("pipeline.max_concurrent"),
			QuizCacheTTL:        viper.GetDuration("pipeline.quiz_cache_ttl"),
		},
		Generator: GeneratorConfig{
			Source: viper.GetString("generator.source"),
			GoogleAI: GoogleAIConfig{
				APIKey: viper.GetString("generator.googleai.api_key"),
				Model:  viper.GetString("generator.googleai.model"),
			},
			Ollama: OllamaConfig{
				ServerURL: viper.GetString("generator.ollama.server_url"),
				Model:     viper.GetString("generator.ollama.model"),
			},
		},
		Tools: ToolsConfig{
			YtDlpPath:       viper.GetString("tools.yt_dlp_path"),
			WhisperPath:     viper.GetString("tools.whisper_path"),
			WhisperModel:    viper.GetString("tools.whisper_model"),
			FFprobePath:     viper.GetString("tools.ffprobe_path"),
			WorkDir:         viper.GetString("tools.work_dir"),
			WhisperLanguage: viper.GetString("tools.whisper_language"),
		},
	}

	// Override with environment variables if set
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if jwtSecret := os.Getenv("JWT_SECRET_KEY"); jwtSecret != "" {
		config.JWT.SecretKey = jwtSecret
	}
	if apiKey := os.Getenv("GOOGLEAI_API_KEY"); apiKey != "" {
		config.Generator.GoogleAI.APIKey = apiKey
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("jwt.access_token_ttl", 15*time.Minute)
	viper.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)
	viper.SetDefault("pipeline.question_count", 10)
	viper.SetDefault("pipeline.transcript_char_limit", 3000)
	viper.SetDefault("pipeline.max_audio_seconds", 3600)
	viper.SetDefault("pipeline.max_response_bytes", 1<<20)
	viper.SetDefault("pipeline.fetch_timeout", 2*time.Minute)
	viper.SetDefault("pipeline.transcribe_timeout", 5*time.Minute)
	viper.SetDefault("pipeline.generate_timeout", time.Minute)
	viper.SetDefault("pipeline.fetch_retries", 2)
	viper.SetDefault("pipeline.retry_backoff", 15*time.Second)
	viper.SetDefault("pipeline.max_concurrent", 4)
	viper.SetDefault("pipeline.quiz_cache_ttl", 10*time.Minute)
	viper.SetDefault("generator.source", "googleai")
	viper.SetDefault("generator.googleai.model", "gemini-2.5-flash")
	viper.SetDefault("generator.ollama.model", "qwen3:0.6b")
	viper.SetDefault("tools.yt_dlp_path", "yt-dlp")
	viper.SetDefault("tools.whisper_path", "whisper-cli")
	viper.SetDefault("tools.ffprobe_path", "ffprobe")
	viper.SetDefault("tools.work_dir", os.TempDir())
	viper.SetDefault("tools.whisper_language", "auto")
}

func (c *Config) GetDSN() string {
	// Oracle DSN format: user/password@host:port/service
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
