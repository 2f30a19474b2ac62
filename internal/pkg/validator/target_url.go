package validator

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// blockedHosts are destinations a webhook must never point at; delivery
// runs server-side, so a local target would let API callers probe the host.
var blockedHosts = []string{
	"localhost", "localhost.localdomain",
	"metadata.google.internal", "169.254.169.254",
}

// ValidateTargetURL checks that a webhook destination is a plausible
// external HTTP endpoint. Resolution is purely syntactic; unreachable hosts
// surface later on the delivery log.
func ValidateTargetURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid URL")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("target URL must use http or https")
	}
	if parsed.Host == "" {
		return errors.New("target URL must include a host")
	}

	host := strings.ToLower(parsed.Hostname())
	for _, blocked := range blockedHosts {
		if host == blocked {
			return errors.New("target host not allowed")
		}
	}

	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return errors.New("target host not allowed")
	}

	return nil
}
