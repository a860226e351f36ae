package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all process-level configuration. It is constructed once at
// startup and passed into constructors; nothing reads the environment after
// Load returns.
type Config struct {
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" required:"true"`

	RealtimeURL    string `envconfig:"REALTIME_URL" default:"wss://api.openai.com/v1/realtime"`
	CallControlURL string `envconfig:"REALTIME_CALLS_URL" default:"https://api.openai.com/v1/realtime/calls"`
	Voice          string `envconfig:"REALTIME_VOICE" default:"cedar"`
	Model          string `envconfig:"REALTIME_MODEL" default:"gpt-realtime"`

	LedgerURL string `envconfig:"DONEXT_API_URL" default:"https://next.money-app.co.il/api/donext-api"`

	// DefaultCampaignID pins every call to one campaign; 0 means tools must
	// receive a campaign id from the session or the engine.
	DefaultCampaignID    int    `envconfig:"CAMPAIGN_ID"`
	FallbackCampaignName string `envconfig:"CAMPAIGN_NAME" default:"הקמפיין"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`

	Port int `envconfig:"PORT" default:"8888"`

	// TerminationGrace is how long the termination protocol waits for the
	// closing message to be delivered before hanging up.
	TerminationGrace time.Duration `envconfig:"TERMINATION_GRACE" default:"2s"`
	// IdleTimeout ends a call after this much inbound silence; 0 disables it.
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT" default:"0"`
}

// Load reads an optional .env file and processes the environment into a
// Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}
