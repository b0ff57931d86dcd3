package profile

import (
	"os"
	"strconv"
	"time"
)

// Default target values mirror the local development endpoint the simulator
// was built against.
const (
	DefaultEndpointURL = "http://localhost:8080/api/v1/loans/ussd"
	DefaultNetwork     = "MTN"
	DefaultPhoneNumber = "0546628393"
	DefaultCallTimeout = 30 * time.Second
)

// Profile is the configuration to start the simulator server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// DSN points to where the request log is kept. Defaults to ":memory:"
	// so nothing survives a restart.
	DSN string
	// Version is the current version of the server
	Version string

	// EndpointURL is the default target USSD endpoint. Editable at runtime
	// through the config API.
	EndpointURL string
	// Network is the default network operator for new sessions.
	Network string
	// PhoneNumber is the default simulated subscriber number.
	PhoneNumber string
	// CallTimeout is the per-call timeout for outbound USSD requests.
	CallTimeout time.Duration
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from USSDSIM_* environment variables,
// keeping any value already set on the profile when the variable is absent.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("USSDSIM_MODE", p.Mode)
	p.Addr = getEnvOrDefault("USSDSIM_ADDR", p.Addr)
	p.DSN = getEnvOrDefault("USSDSIM_DSN", p.DSN)
	p.EndpointURL = getEnvOrDefault("USSDSIM_ENDPOINT", p.EndpointURL)
	p.Network = getEnvOrDefault("USSDSIM_NETWORK", p.Network)
	p.PhoneNumber = getEnvOrDefault("USSDSIM_PHONE", p.PhoneNumber)

	if port := os.Getenv("USSDSIM_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			p.Port = n
		}
	}
	if timeout := os.Getenv("USSDSIM_CALL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			p.CallTimeout = d
		}
	}
}

// Validate normalizes the profile, applying defaults for anything missing.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port <= 0 {
		p.Port = 3000
	}
	if p.DSN == "" {
		p.DSN = ":memory:"
	}
	if p.EndpointURL == "" {
		p.EndpointURL = DefaultEndpointURL
	}
	if p.Network == "" {
		p.Network = DefaultNetwork
	}
	if p.PhoneNumber == "" {
		p.PhoneNumber = DefaultPhoneNumber
	}
	if p.CallTimeout <= 0 {
		p.CallTimeout = DefaultCallTimeout
	}
	return nil
}
