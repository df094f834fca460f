package util

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	ProviderTinkoff = "tinkoff"
	ProviderAlpaca  = "alpaca"
	ProviderMock    = "mock"

	DefaultPrimaryFilter = `instrumentType != "currency"`
	DefaultCacheTtl      = time.Hour
	DefaultJobTimeout    = 60 * time.Second
)

type Secrets struct {
	Provider         string                 `json:"provider"`
	Tinkoff          TinkoffSecrets         `json:"tinkoff"`
	Alpaca           []AlpacaAccountSecrets `json:"alpaca"`
	PrimaryAccount   string                 `json:"primaryAccount"`
	SecondaryAccount string                 `json:"secondaryAccount"`
	// PrimaryFilter selects which primary positions take part in the
	// comparison. nil means the default (cash excluded), "" means no filter.
	PrimaryFilter *string     `json:"primaryFilter"`
	CacheTtl      Duration    `json:"cacheTtl"`
	JobTimeout    Duration    `json:"jobTimeout"`
	Api           ApiSecrets  `json:"api"`
	SES           *SesSecrets `json:"ses"`
}

type TinkoffSecrets struct {
	Token   string `json:"token"`
	BaseURL string `json:"baseUrl"`
	// RequestsPerSecond throttles outgoing calls, 0 keeps the client default
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

type AlpacaAccountSecrets struct {
	Name      string `json:"name"`
	ApiKey    string `json:"apiKey"`
	ApiSecret string `json:"apiSecret"`
	Endpoint  string `json:"endpoint"`
}

type ApiSecrets struct {
	Port      int    `json:"port"`
	JwtSecret string `json:"jwtSecret"`
}

type SesSecrets struct {
	Region    string `json:"region"`
	FromEmail string `json:"fromEmail"`
	ToEmail   string `json:"toEmail"`
}

// Duration reads durations written as "1h" or "90s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"1h\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (s Secrets) PrimaryFilterExpression() string {
	if s.PrimaryFilter == nil {
		return DefaultPrimaryFilter
	}
	return *s.PrimaryFilter
}

func (s *Secrets) applyDefaults() {
	if s.Provider == "" {
		s.Provider = ProviderTinkoff
	}
	if s.CacheTtl.Duration == 0 {
		s.CacheTtl.Duration = DefaultCacheTtl
	}
	if s.JobTimeout.Duration == 0 {
		s.JobTimeout.Duration = DefaultJobTimeout
	}
	if s.Api.Port == 0 {
		s.Api.Port = 3009
	}
}

func (s Secrets) Validate() error {
	if s.PrimaryAccount == "" || s.SecondaryAccount == "" {
		return fmt.Errorf("primaryAccount and secondaryAccount are required")
	}
	if s.PrimaryAccount == s.SecondaryAccount {
		return fmt.Errorf("primaryAccount and secondaryAccount must differ, both are %q", s.PrimaryAccount)
	}
	switch s.Provider {
	case ProviderTinkoff:
		if s.Tinkoff.Token == "" {
			return fmt.Errorf("tinkoff.token is required for provider %s", s.Provider)
		}
	case ProviderAlpaca:
		if len(s.Alpaca) == 0 {
			return fmt.Errorf("at least one alpaca account is required for provider %s", s.Provider)
		}
		for _, a := range s.Alpaca {
			if a.Name == "" || a.ApiKey == "" || a.ApiSecret == "" {
				return fmt.Errorf("alpaca account %q is missing name, apiKey or apiSecret", a.Name)
			}
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q", s.Provider)
	}
	if s.SES != nil && (s.SES.Region == "" || s.SES.FromEmail == "") {
		return fmt.Errorf("ses.region and ses.fromEmail are required when ses is set")
	}
	return nil
}

func ParseSecrets(b []byte) (*Secrets, error) {
	secrets := Secrets{}
	if err := json.Unmarshal(b, &secrets); err != nil {
		return nil, fmt.Errorf("failed to parse secrets: %w", err)
	}
	secrets.applyDefaults()
	if err := secrets.Validate(); err != nil {
		return nil, fmt.Errorf("invalid secrets: %w", err)
	}

	return &secrets, nil
}

func secretsFile() string {
	if f := os.Getenv("MIRROR_SECRETS_FILE"); f != "" {
		return f
	}
	switch os.Getenv("MIRROR_ENV") {
	case "dev":
		return "secrets-dev.json"
	case "test":
		return "secrets-test.json"
	}
	return "/go/src/app/secrets.json"
}

func LoadSecrets() (*Secrets, error) {
	return LoadSecretsFile(secretsFile())
}

func LoadSecretsFile(path string) (*Secrets, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	return ParseSecrets(f)
}
