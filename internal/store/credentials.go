package store

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"daily-intel/internal/errs"
)

// Credentials come from the environment only and are never written to config.yaml.
type Credentials struct {
	EmailFrom     string   `env:"EMAIL_FROM" validate:"required,email"`
	EmailPassword string   `env:"EMAIL_PASSWORD" validate:"required"`
	EmailTo       []string `env:"EMAIL_TO" validate:"required,min=1,dive,email"`
	SMTPHost      string   `env:"SMTP_HOST" validate:"required,hostname"`
	SMTPPort      int      `env:"SMTP_PORT" validate:"required,min=1,max=65535"`

	NewsAPIKey      string `env:"NEWS_API_KEY"`
	KiteAPIKey      string `env:"KITE_API_KEY"`
	KiteAccessToken string `env:"KITE_ACCESS_TOKEN" validate:"required_with=KiteAPIKey"`
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	AnthropicKey    string `env:"ANTHROPIC_API_KEY"`
}

func LoadCredentials() Credentials {
	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		port = 0
	}
	return Credentials{
		EmailFrom:       strings.TrimSpace(os.Getenv("EMAIL_FROM")),
		EmailPassword:   os.Getenv("EMAIL_PASSWORD"),
		EmailTo:         splitAndTrim(os.Getenv("EMAIL_TO")),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        port,
		NewsAPIKey:      os.Getenv("NEWS_API_KEY"),
		KiteAPIKey:      os.Getenv("KITE_API_KEY"),
		KiteAccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report failures by environment variable name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate fails with a CONFIG error naming every bad variable.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Config("credential validation", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return errs.Config("invalid credentials: "+strings.Join(problems, ", "), nil)
}

func (c Credentials) HasKite() bool {
	return c.KiteAPIKey != "" && c.KiteAccessToken != ""
}

func (c Credentials) Redacted() map[string]string {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	return map[string]string{
		"EMAIL_FROM":        c.EmailFrom,
		"EMAIL_TO":          strings.Join(c.EmailTo, ","),
		"SMTP_HOST":         c.SMTPHost,
		"SMTP_PORT":         strconv.Itoa(c.SMTPPort),
		"EMAIL_PASSWORD":    mask(c.EmailPassword),
		"NEWS_API_KEY":      mask(c.NewsAPIKey),
		"KITE_API_KEY":      mask(c.KiteAPIKey),
		"OPENAI_API_KEY":    mask(c.OpenAIKey),
		"ANTHROPIC_API_KEY": mask(c.AnthropicKey),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
