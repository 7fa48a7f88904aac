package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"daily-intel/internal/errs"
)

type Config struct {
	Timezone    string   `yaml:"timezone"`
	ExcludeDays []string `yaml:"exclude_days"`

	HTTP struct {
		ConnectTimeout   time.Duration `yaml:"connect_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxRetries       int           `yaml:"max_retries"`
		BackoffInitial   time.Duration `yaml:"backoff_initial"`
		BackoffMax       time.Duration `yaml:"backoff_max"`
		RetryStatusCodes []int         `yaml:"retry_status_codes"`
		UserAgents       []string      `yaml:"user_agents"`
	} `yaml:"http"`

	RequestDelay time.Duration `yaml:"request_delay"`

	Filters struct {
		SimilarityWords  int      `yaml:"similarity_words"`
		DescriptionLimit int      `yaml:"description_limit"`
		ExcludeKeywords  []string `yaml:"exclude_keywords"`
	} `yaml:"filters"`

	News    NewsConfig    `yaml:"news"`
	Stocks  StocksConfig  `yaml:"stocks"`
	Jobs    JobsConfig    `yaml:"jobs"`
	SAP     SAPConfig     `yaml:"sap"`
	Summary SummaryConfig `yaml:"summary"`
	Report  ReportConfig  `yaml:"report"`
}

type PageSource struct {
	Name      string   `yaml:"name"`
	URL       string   `yaml:"url"`
	Selectors []string `yaml:"selectors"`
}

type NewsCategory struct {
	Name         string       `yaml:"name"`
	Feeds        []string     `yaml:"feeds"`
	Pages        []PageSource `yaml:"pages"`
	MaxItems     int          `yaml:"max_items"`
	PerFeedLimit int          `yaml:"per_feed_limit"`
	UseNewsAPI   bool         `yaml:"use_newsapi"`
}

type NewsConfig struct {
	Categories []NewsCategory `yaml:"categories"`
	Window     time.Duration  `yaml:"window"`
	MinItems   int            `yaml:"min_items"`
	NewsAPIURL string         `yaml:"newsapi_url"`
	Country    string         `yaml:"country"`
}

type FallbackQuote struct {
	Symbol string  `yaml:"symbol"`
	Name   string  `yaml:"name"`
	Price  float64 `yaml:"price"`
}

type CapBucket struct {
	Name            string          `yaml:"name"`
	Count           int             `yaml:"count"`
	MoneyControlURL string          `yaml:"moneycontrol_url"`
	ScreenerURL     string          `yaml:"screener_url"`
	Fallback        []FallbackQuote `yaml:"fallback"`
}

type StocksConfig struct {
	Buckets          []CapBucket `yaml:"buckets"`
	GainersURL       string      `yaml:"gainers_url"`
	LosersURL        string      `yaml:"losers_url"`
	GainersCount     int         `yaml:"gainers_count"`
	LosersCount      int         `yaml:"losers_count"`
	ChartURL         string      `yaml:"chart_url"`
	IndexSymbol      string      `yaml:"index_symbol"`
	IndexName        string      `yaml:"index_name"`
	SymbolSuffix     string      `yaml:"symbol_suffix"`
	Exchange         string      `yaml:"exchange"`
	FundsURL         string      `yaml:"funds_url"`
	FundCategories   []string    `yaml:"fund_categories"`
	FundsPerCategory int         `yaml:"funds_per_category"`
}

type PackageTier struct {
	MinLPA float64 `yaml:"min_lpa"`
	Bonus  float64 `yaml:"bonus"`
}

type JobsConfig struct {
	Feeds             []string      `yaml:"feeds"`
	Pages             []PageSource  `yaml:"pages"`
	Keywords          []string      `yaml:"keywords"`
	TitleWeight       float64       `yaml:"title_weight"`
	DescriptionWeight float64       `yaml:"description_weight"`
	Employers         []string      `yaml:"employers"`
	EmployerBonus     float64       `yaml:"employer_bonus"`
	SeniorityKeywords []string      `yaml:"seniority_keywords"`
	SeniorityBonus    float64       `yaml:"seniority_bonus"`
	PackageTiers      []PackageTier `yaml:"package_tiers"`
	MinScore          float64       `yaml:"min_score"`
	MaxItems          int           `yaml:"max_items"`
	MinItems          int           `yaml:"min_items"`
	Window            time.Duration `yaml:"window"`
}

type SAPConfig struct {
	Feeds    []string      `yaml:"feeds"`
	Keywords []string      `yaml:"keywords"`
	MaxItems int           `yaml:"max_items"`
	MinItems int           `yaml:"min_items"`
	Window   time.Duration `yaml:"window"`
}

type SummaryConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	System      string  `yaml:"system"`
}

type ReportConfig struct {
	Title         string `yaml:"title"`
	AttachPDF     bool   `yaml:"attach_pdf"`
	ArchiveDir    string `yaml:"archive_dir"`
	RetentionDays int    `yaml:"retention_days"`
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	for _, d := range c.ExcludeDays {
		if _, ok := weekdays[strings.ToLower(d)]; !ok {
			return fmt.Errorf("exclude_days contains unknown weekday '%s'", d)
		}
	}
	if c.HTTP.ConnectTimeout <= 0 || c.HTTP.ReadTimeout <= 0 {
		return errors.New("http.connect_timeout and http.read_timeout must be positive")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries cannot be negative, got %d", c.HTTP.MaxRetries)
	}
	if len(c.HTTP.UserAgents) == 0 {
		return errors.New("http.user_agents cannot be empty")
	}
	if c.Filters.SimilarityWords <= 0 {
		return fmt.Errorf("filters.similarity_words must be positive, got %d", c.Filters.SimilarityWords)
	}
	if len(c.News.Categories) == 0 {
		return errors.New("news.categories cannot be empty")
	}
	for _, cat := range c.News.Categories {
		if cat.Name == "" || cat.MaxItems <= 0 {
			return fmt.Errorf("news category '%s' needs a name and positive max_items", cat.Name)
		}
	}
	if c.Jobs.TitleWeight < 0 || c.Jobs.DescriptionWeight < 0 || c.Jobs.EmployerBonus < 0 || c.Jobs.SeniorityBonus < 0 {
		return errors.New("jobs weights and bonuses cannot be negative")
	}
	for _, tier := range c.Jobs.PackageTiers {
		if tier.Bonus < 0 {
			return fmt.Errorf("jobs.package_tiers bonus cannot be negative, got %.1f", tier.Bonus)
		}
	}
	switch strings.ToUpper(c.Summary.Provider) {
	case "", "NONE", "OPENAI", "CLAUDE":
	default:
		return fmt.Errorf("summary.provider must be 'OPENAI', 'CLAUDE' or 'NONE', got '%s'", c.Summary.Provider)
	}
	return nil
}

// Location returns the report timezone, falling back to a fixed IST offset
// when tzdata is unavailable.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("IST", 19800)
}

// Excluded reports whether runs are suppressed on the given weekday.
func (c *Config) Excluded(day time.Weekday) bool {
	for _, d := range c.ExcludeDays {
		if wd, ok := weekdays[strings.ToLower(d)]; ok && wd == day {
			return true
		}
	}
	return false
}

// LoadConfig reads path over Default() so a partial file only overrides what
// it names. Slices in the file replace the defaults wholesale.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errs.Config("parse "+path, err)
	}

	if c.Timezone == "" {
		c.Timezone = "Asia/Kolkata"
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}

	if err := c.Validate(); err != nil {
		return nil, errs.Config("config validation failed", err)
	}

	return c, nil
}
