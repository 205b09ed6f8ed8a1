package config

import (
	"fmt"
	"os"
	"time"
	// Zone names must resolve in minimal images without system tzdata.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Dosada05/courtsched/models"
)

// Config holds every setting of the service. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecretKey string `envconfig:"JWT_SECRET_KEY" required:"true"`
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8080"`

	// External scheduling service. Schedule generation is disabled when empty.
	AlgorithmsURL     string        `envconfig:"ALGORITHMS_URL"`
	AlgorithmsTimeout time.Duration `envconfig:"ALGORITHMS_TIMEOUT" default:"30s"`
	AlgorithmsRPS     float64       `envconfig:"ALGORITHMS_RPS" default:"2"`

	// Domain events. Publishing is disabled when AMQPURL is empty.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"courtsched.events"`

	// Cloudflare R2 archive of approved schedules. Disabled unless every field is set.
	R2AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `envconfig:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `envconfig:"R2_PUBLIC_BASE_URL"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	AvailabilityRPS    float64  `envconfig:"AVAILABILITY_RPS" default:"10"`
	AvailabilityBurst  int      `envconfig:"AVAILABILITY_BURST" default:"20"`
	GenerateRPS        float64  `envconfig:"GENERATE_RPS" default:"0.2"`
	GenerateBurst      int      `envconfig:"GENERATE_BURST" default:"3"`

	SchedulingConfigFile string `envconfig:"SCHEDULING_CONFIG_FILE"`

	Scheduling SchedulingDefaults `ignored:"true"`
}

// SchedulingDefaults fill in review options a request leaves out.
type SchedulingDefaults struct {
	MinRest  time.Duration
	DayStart models.TimeOfDay
	DayEnd   models.TimeOfDay
	// Location is the club's time zone. Operating hours are placed on its calendar days.
	Location *time.Location
}

// Zone returns Location, or UTC when none is set.
func (d SchedulingDefaults) Zone() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

// HasOperatingHours reports whether a default reference window is configured.
func (d SchedulingDefaults) HasOperatingHours() bool {
	return d.DayStart < d.DayEnd
}

func DefaultScheduling() SchedulingDefaults {
	return SchedulingDefaults{MinRest: 15 * time.Minute, Location: time.UTC}
}

// R2Enabled reports whether the archive is fully configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.AlgorithmsRPS <= 0 {
		return nil, fmt.Errorf("ALGORITHMS_RPS must be positive, got %v", cfg.AlgorithmsRPS)
	}
	if cfg.AvailabilityRPS <= 0 || cfg.GenerateRPS <= 0 {
		return nil, fmt.Errorf("AVAILABILITY_RPS and GENERATE_RPS must be positive, got %v and %v",
			cfg.AvailabilityRPS, cfg.GenerateRPS)
	}

	cfg.Scheduling = DefaultScheduling()
	if cfg.SchedulingConfigFile != "" {
		defaults, err := LoadSchedulingDefaults(cfg.SchedulingConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.Scheduling = defaults
	}
	return &cfg, nil
}

// LoadSchedulingDefaults reads a YAML file such as:
//
//	min_rest: 15m
//	day_start: "08:00"
//	day_end: "22:00"
//	timezone: Europe/Madrid
func LoadSchedulingDefaults(path string) (SchedulingDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SchedulingDefaults{}, fmt.Errorf("failed to read scheduling config %s: %w", path, err)
	}
	return ParseSchedulingDefaults(data)
}

func ParseSchedulingDefaults(data []byte) (SchedulingDefaults, error) {
	var raw struct {
		MinRest  string `yaml:"min_rest"`
		DayStart string `yaml:"day_start"`
		DayEnd   string `yaml:"day_end"`
		Timezone string `yaml:"timezone"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return SchedulingDefaults{}, fmt.Errorf("failed to unmarshal scheduling config: %w", err)
	}

	defaults := DefaultScheduling()
	if raw.MinRest != "" {
		d, err := time.ParseDuration(raw.MinRest)
		if err != nil {
			return SchedulingDefaults{}, fmt.Errorf("invalid min_rest %q: %w", raw.MinRest, err)
		}
		if d < 0 {
			return SchedulingDefaults{}, fmt.Errorf("min_rest must not be negative, got %s", d)
		}
		defaults.MinRest = d
	}
	if raw.Timezone != "" {
		loc, err := time.LoadLocation(raw.Timezone)
		if err != nil {
			return SchedulingDefaults{}, fmt.Errorf("invalid timezone %q: %w", raw.Timezone, err)
		}
		defaults.Location = loc
	}
	if (raw.DayStart == "") != (raw.DayEnd == "") {
		return SchedulingDefaults{}, fmt.Errorf("day_start and day_end must be set together")
	}
	if raw.DayStart != "" {
		start, err := models.ParseTimeOfDay(raw.DayStart)
		if err != nil {
			return SchedulingDefaults{}, fmt.Errorf("invalid day_start: %w", err)
		}
		end, err := models.ParseTimeOfDay(raw.DayEnd)
		if err != nil {
			return SchedulingDefaults{}, fmt.Errorf("invalid day_end: %w", err)
		}
		if start >= end {
			return SchedulingDefaults{}, fmt.Errorf("day_start %s must be before day_end %s", start, end)
		}
		defaults.DayStart, defaults.DayEnd = start, end
	}
	return defaults, nil
}
