package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
	Restrictions Restrictions `yaml:"restrictions"`
	Backtest     struct {
		IntentsCSV string `yaml:"intents_csv"`
	} `yaml:"backtest"`
}

// Restrictions selects and feeds the restriction query variant.
type Restrictions struct {
	Mode         string   `yaml:"mode"` // noop, static, time_versioned
	File         string   `yaml:"file"`
	Assets       []string `yaml:"assets"`
	Watch        bool     `yaml:"watch"`
	BatchWorkers int      `yaml:"batch_workers"`
}

const (
	ModeNoop          = "noop"
	ModeStatic        = "static"
	ModeTimeVersioned = "time_versioned"
)

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":9090"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	c.Restrictions.Mode = ModeNoop
	c.Restrictions.BatchWorkers = 4
	return c
}

// Load reads defaults, then the YAML file named by TRADEGATE_CONFIG, then env overrides.
func Load() (Config, error) {
	c := defaultConfig()
	if path := os.Getenv("TRADEGATE_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if v := os.Getenv("TRADEGATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TRADEGATE_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("TRADEGATE_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TRADEGATE_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("TRADEGATE_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("TRADEGATE_RESTRICTIONS_MODE"); v != "" {
		c.Restrictions.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("TRADEGATE_RESTRICTIONS_FILE"); v != "" {
		c.Restrictions.File = v
	}
	if v := os.Getenv("TRADEGATE_RESTRICTED_ASSETS"); v != "" {
		c.Restrictions.Assets = splitCSV(v)
	}
	if v := os.Getenv("TRADEGATE_RESTRICTIONS_WATCH"); v == "1" || v == "true" {
		c.Restrictions.Watch = true
	}
	if v := os.Getenv("TRADEGATE_BATCH_WORKERS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Restrictions.BatchWorkers = n
		}
	}
	if v := os.Getenv("TRADEGATE_BACKTEST_CSV"); v != "" {
		c.Backtest.IntentsCSV = v
	}
	return c, c.Validate()
}

// Validate checks values that cannot be corrected silently.
func (c Config) Validate() error {
	switch c.Restrictions.Mode {
	case ModeNoop, ModeStatic, ModeTimeVersioned:
	default:
		return fmt.Errorf("restrictions.mode %q: want %s, %s or %s", c.Restrictions.Mode, ModeNoop, ModeStatic, ModeTimeVersioned)
	}
	if c.Restrictions.Mode == ModeTimeVersioned && c.Restrictions.File == "" {
		return fmt.Errorf("restrictions.file is required for mode %s", ModeTimeVersioned)
	}
	if c.Restrictions.Watch && c.Restrictions.File == "" {
		return fmt.Errorf("restrictions.watch needs restrictions.file")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
