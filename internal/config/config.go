package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Redis     RedisConfig     `yaml:"redis"`
	Program   ProgramConfig   `yaml:"program"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// RedisConfig enables the optional leaderboard cache. Leave Addr empty to
// run without redis.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ProgramConfig holds every tunable of the training program: block layouts,
// XP awards, level thresholds. These values have changed over the product's
// life (14-week vs 12-week blocks, different per-session awards), so they
// are data here, never constants at call sites.
type ProgramConfig struct {
	// DefaultBlockWeeks is the duration used when enrolling a new block.
	DefaultBlockWeeks int `yaml:"default_block_weeks"`

	// WeekLayouts maps a block duration to its testing/rest week sets.
	// A duration without a layout cannot be scheduled.
	WeekLayouts map[int]WeekLayout `yaml:"week_layouts"`

	// Session2OffsetDays delays the second training session of a week so
	// sessions drip out instead of unlocking together.
	Session2OffsetDays int `yaml:"session2_offset_days"`

	Awards AwardTable `yaml:"awards"`

	// LevelThresholds is the ascending cumulative-XP table. Index i holds
	// the XP needed for level i+1, so the first element is always 0.
	LevelThresholds []int `yaml:"level_thresholds"`

	// ConsistencyPrecision is the number of decimal places in the
	// consistency percentage.
	ConsistencyPrecision int `yaml:"consistency_precision"`

	// ResultSchemaVersion pins the logical-field → storage-column mapping
	// used by the completeness predicate.
	ResultSchemaVersion int `yaml:"result_schema_version"`
}

// WeekLayout classifies the weeks of a block. A week listed in both sets is
// treated as rest.
type WeekLayout struct {
	TestingWeeks []int `yaml:"testing_weeks"`
	RestWeeks    []int `yaml:"rest_weeks"`
}

// AwardTable holds the XP amount granted per ledger event.
type AwardTable struct {
	SessionCompletion int `yaml:"session_completion"`
	TestingBonus      int `yaml:"testing_bonus"`
	WeeklyBonus       int `yaml:"weekly_bonus"`
	PeriodBonus       int `yaml:"period_bonus"`
	BlockBonus        int `yaml:"block_bonus"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// DefaultProgram returns the canonical program rules: 12-week blocks testing
// in weeks 5 and 10 with week 7 off, plus the legacy 14-week layout kept for
// athletes enrolled before the duration change.
func DefaultProgram() ProgramConfig {
	return ProgramConfig{
		DefaultBlockWeeks: 12,
		WeekLayouts: map[int]WeekLayout{
			12: {TestingWeeks: []int{5, 10}, RestWeeks: []int{7}},
			14: {TestingWeeks: []int{5, 10}, RestWeeks: []int{7, 14}},
		},
		Session2OffsetDays: 3,
		Awards: AwardTable{
			SessionCompletion: 4,
			TestingBonus:      6,
			WeeklyBonus:       5,
			PeriodBonus:       15,
			BlockBonus:        40,
		},
		LevelThresholds:      []int{0, 30, 75, 140, 225, 330, 455, 600},
		ConsistencyPrecision: 1,
		ResultSchemaVersion:  2,
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Program fields left empty fall back to DefaultProgram.
// Env vars use the prefix LIFTCAMP_ and underscore-separated paths:
//
//	LIFTCAMP_SERVER_HOST, LIFTCAMP_SERVER_PORT,
//	LIFTCAMP_DB_HOST, LIFTCAMP_DB_PORT, LIFTCAMP_DB_NAME,
//	LIFTCAMP_DB_USER, LIFTCAMP_DB_PASSWORD, LIFTCAMP_DB_SSLMODE,
//	LIFTCAMP_AUTH_API_KEY, LIFTCAMP_REDIS_ADDR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyProgramDefaults(&cfg.Program)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTCAMP_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTCAMP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTCAMP_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTCAMP_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTCAMP_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTCAMP_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTCAMP_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTCAMP_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTCAMP_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTCAMP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
}

func applyProgramDefaults(p *ProgramConfig) {
	def := DefaultProgram()
	if p.DefaultBlockWeeks == 0 {
		p.DefaultBlockWeeks = def.DefaultBlockWeeks
	}
	if len(p.WeekLayouts) == 0 {
		p.WeekLayouts = def.WeekLayouts
	}
	if p.Session2OffsetDays == 0 {
		p.Session2OffsetDays = def.Session2OffsetDays
	}
	if p.Awards == (AwardTable{}) {
		p.Awards = def.Awards
	}
	if len(p.LevelThresholds) == 0 {
		p.LevelThresholds = def.LevelThresholds
	}
	if p.ConsistencyPrecision == 0 {
		p.ConsistencyPrecision = def.ConsistencyPrecision
	}
	if p.ResultSchemaVersion == 0 {
		p.ResultSchemaVersion = def.ResultSchemaVersion
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return c.Program.validate()
}

func (p ProgramConfig) validate() error {
	if p.DefaultBlockWeeks <= 0 {
		return fmt.Errorf("program.default_block_weeks must be positive")
	}
	if _, ok := p.WeekLayouts[p.DefaultBlockWeeks]; !ok {
		return fmt.Errorf("program.week_layouts has no layout for default duration %d", p.DefaultBlockWeeks)
	}
	for weeks, layout := range p.WeekLayouts {
		if weeks <= 0 {
			return fmt.Errorf("program.week_layouts: duration %d is invalid", weeks)
		}
		for _, w := range append(append([]int{}, layout.TestingWeeks...), layout.RestWeeks...) {
			if w < 1 || w > weeks {
				return fmt.Errorf("program.week_layouts[%d]: week %d is out of range", weeks, w)
			}
		}
	}
	if len(p.LevelThresholds) == 0 || p.LevelThresholds[0] != 0 {
		return fmt.Errorf("program.level_thresholds must start at 0")
	}
	if !sort.IntsAreSorted(p.LevelThresholds) {
		return fmt.Errorf("program.level_thresholds must be ascending")
	}
	return nil
}
