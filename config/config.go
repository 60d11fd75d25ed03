package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddr   string
	DBPath       string
	ArchiveDBURL string
	LogPath      string
	ArtifactsDir string
	LogLevel     string

	Browser   BrowserConfig
	Pipeline  PipelineConfig
	Scheduler SchedulerConfig
	S3        S3Config
	Site      *SiteConfig
}

type BrowserConfig struct {
	Headless bool
}

type PipelineConfig struct {
	GlobalTimeout  time.Duration
	NavTimeout     time.Duration
	StepTimeout    time.Duration
	SuggestionWait time.Duration
	SettleDelay    time.Duration
}

type SchedulerConfig struct {
	ProbeCron     string
	CleanupCron   string
	RetentionDays int
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != ""
}

// SiteConfig describes the target application: entry URLs, the domain the
// navigator matches frames against, and plausibility bounds for extracted
// prices. Loaded from config/sites/serpavi.yaml with baked-in defaults.
type SiteConfig struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	AppURL           string  `yaml:"app_url"`
	LandingURL       string  `yaml:"landing_url"`
	Domain           string  `yaml:"domain"`
	ResolveTimeoutMS int     `yaml:"resolve_timeout_ms"`
	RentMin          float64 `yaml:"rent_min"`
	RentMax          float64 `yaml:"rent_max"`
	PerAreaMin       float64 `yaml:"per_area_min"`
	PerAreaMax       float64 `yaml:"per_area_max"`
}

func defaultSite() *SiteConfig {
	return &SiteConfig{
		ID:               "serpavi",
		Name:             "SERPAVI",
		AppURL:           "https://serpavi.mivau.gob.es/",
		LandingURL:       "https://www.mivau.gob.es/vivienda/alquila-bien-es-tu-derecho/serpavi",
		Domain:           "serpavi.mivau.gob.es",
		ResolveTimeoutMS: 25000,
		RentMin:          100,
		RentMax:          20000,
		PerAreaMin:       1,
		PerAreaMax:       200,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		DBPath:       getEnv("DB_PATH", "estimator.db"),
		ArchiveDBURL: os.Getenv("ARCHIVE_DB_URL"),
		LogPath:      getEnv("LOG_PATH", "estimator.log"),
		ArtifactsDir: getEnv("ARTIFACTS_DIR", "artifacts"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Browser: BrowserConfig{
			Headless: getEnv("BROWSER_HEADLESS", "true") == "true",
		},
		Pipeline: PipelineConfig{
			GlobalTimeout:  getEnvDuration("PIPELINE_TIMEOUT", 90*time.Second),
			NavTimeout:     getEnvDuration("NAV_TIMEOUT", 15*time.Second),
			StepTimeout:    getEnvDuration("STEP_TIMEOUT", 10*time.Second),
			SuggestionWait: getEnvDuration("SUGGESTION_WAIT", 6*time.Second),
			SettleDelay:    getEnvDuration("SETTLE_DELAY", 1500*time.Millisecond),
		},
		Scheduler: SchedulerConfig{
			ProbeCron:     getEnv("PROBE_CRON", "*/30 * * * *"),
			CleanupCron:   getEnv("CLEANUP_CRON", "0 4 * * *"),
			RetentionDays: getEnvInt("RETENTION_DAYS", 30),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "eu-west-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Site: defaultSite(),
	}

	if err := cfg.loadSiteConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSiteConfig() error {
	path := getEnv("SITE_CONFIG", "config/sites/serpavi.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	site := defaultSite()
	if err := yaml.Unmarshal(data, site); err != nil {
		return err
	}
	c.Site = site
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
