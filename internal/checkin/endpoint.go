package checkin

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/deixis/hcrun"
)

// DefaultBaseURL is the public Healthchecks.io ping host.
const DefaultBaseURL = "https://hc-ping.com"

// ErrMissingIdentity is returned when a check is identified by neither a UUID
// nor a ping key and slug.
var ErrMissingIdentity = errors.New("check requires a uuid, or a ping key and slug")

// Endpoint identifies the check to ping.
type Endpoint struct {
	BaseURL string
	UUID    string
	PingKey string
	Slug    string
}

// URL resolves the ping URL prefix: <base>/<uuid> when a UUID is set,
// <base>/<ping key>/<slug> otherwise.
func (e Endpoint) URL() (string, error) {
	base := normalizeBaseURL(e.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	switch {
	case e.UUID != "":
		return base + "/" + e.UUID, nil
	case e.Slug != "" && e.PingKey != "":
		return base + "/" + e.PingKey + "/" + e.Slug, nil
	case e.Slug != "":
		return "", fmt.Errorf("%w: slug %q has no ping key", ErrMissingIdentity, e.Slug)
	default:
		return "", ErrMissingIdentity
	}
}

// Secrets returns the parts of the endpoint that grant ping access, for log
// redaction.
func (e Endpoint) Secrets() []string {
	var out []string
	for _, s := range []string{e.UUID, e.PingKey} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// UserAgent builds the client label sent with every request:
// "hcrun - <host>", or "<custom> (hcrun - <host>)" with a custom label.
func UserAgent(custom string) string {
	base := hcrun.Name
	if host, err := os.Hostname(); err == nil && host != "" {
		base = fmt.Sprintf("%s - %s", hcrun.Name, host)
	}
	if custom != "" {
		return fmt.Sprintf("%s (%s)", custom, base)
	}
	return base
}

func normalizeBaseURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return value
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		value = "https://" + value
	}
	return strings.TrimRight(value, "/")
}
