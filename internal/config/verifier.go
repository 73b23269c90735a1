package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultVerificationPageURL = "https://archive.nptel.ac.in/noc/Ecertificate/?q=%s"
	DefaultLinkPrefix          = "https://internalapp.nptel.ac.in/"
	DefaultCertificateAnchor   = "Course Certificate"
)

// VerifierConfig holds the issuer endpoints and the limits applied to
// outbound traffic while verifying certificates.
type VerifierConfig struct {
	VerificationPageURL string
	LinkPrefix          string
	AnchorText          string
	HTTPTimeout         time.Duration
	RequestsPerSecond   float64
	Workers             int
	UserAgent           string
}

var (
	verifierConfig *VerifierConfig
	verifierOnce   sync.Once
)

func LoadVerifierConfig() *VerifierConfig {
	verifierOnce.Do(func() {
		verifierConfig = &VerifierConfig{
			VerificationPageURL: PageURLTemplate(envString("VERIFIER_PAGE_URL", DefaultVerificationPageURL)),
			LinkPrefix:          envString("VERIFIER_LINK_PREFIX", DefaultLinkPrefix),
			AnchorText:          envString("VERIFIER_ANCHOR_TEXT", DefaultCertificateAnchor),
			HTTPTimeout:         envDuration("VERIFIER_HTTP_TIMEOUT", 30*time.Second),
			RequestsPerSecond:   envFloat("VERIFIER_REQUESTS_PER_SECOND", 4),
			Workers:             envInt("VERIFIER_WORKERS", 4),
			UserAgent:           envString("VERIFIER_USER_AGENT", "cert-verifier/1.0"),
		}
		if verifierConfig.Workers <= 0 {
			verifierConfig.Workers = 1
		}
	})
	return verifierConfig
}

// DefaultVerifierConfig returns the built-in issuer settings without reading
// the environment.
func DefaultVerifierConfig() *VerifierConfig {
	return &VerifierConfig{
		VerificationPageURL: DefaultVerificationPageURL,
		LinkPrefix:          DefaultLinkPrefix,
		AnchorText:          DefaultCertificateAnchor,
		HTTPTimeout:         30 * time.Second,
		RequestsPerSecond:   4,
		Workers:             4,
		UserAgent:           "cert-verifier/1.0",
	}
}

// PageURLTemplate returns tmpl when it holds exactly one %s for the
// certificate identifier, otherwise the default verification page.
func PageURLTemplate(tmpl string) string {
	if strings.Count(tmpl, "%s") != 1 || strings.Count(tmpl, "%") != 1 {
		log.Printf("Warning: verification page URL %q must contain one %%s, using %s", tmpl, DefaultVerificationPageURL)
		return DefaultVerificationPageURL
	}
	return tmpl
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
