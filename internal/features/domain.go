package features

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/sync/errgroup"
)

// whoisDateLayouts covers the creation/expiry formats seen across registrar
// WHOIS responses.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// DomainLookupConfig bounds the two network probes.
type DomainLookupConfig struct {
	WhoisTimeout time.Duration
	TLSTimeout   time.Duration
}

// registrationInfo is the all-or-nothing outcome of the WHOIS probe.
// Available is false when the lookup failed or timed out; the remaining
// fields are only meaningful when it is true.
type registrationInfo struct {
	Available      bool
	AgeDays        int
	ExpiryDays     int
	RegistrarKnown bool
	AgeKnown       bool
	ExpiryKnown    bool
}

// certificateInfo is the all-or-nothing outcome of the TLS probe.
type certificateInfo struct {
	Available bool
	AgeDays   int
}

// DomainExtractor derives the network-bound feature group: registration age
// and expiry from WHOIS, certificate presence and age from a TLS handshake.
// Both probes are best-effort and independent; any failure yields sentinel
// values, never an error.
type DomainExtractor struct {
	cfg    DomainLookupConfig
	logger *slog.Logger
}

// NewDomainExtractor creates a domain feature extractor. Zero timeouts
// default to 5 seconds.
func NewDomainExtractor(cfg DomainLookupConfig, logger *slog.Logger) *DomainExtractor {
	if cfg.WhoisTimeout <= 0 {
		cfg.WhoisTimeout = 5 * time.Second
	}
	if cfg.TLSTimeout <= 0 {
		cfg.TLSTimeout = 5 * time.Second
	}
	return &DomainExtractor{cfg: cfg, logger: logger}
}

// SentinelDomainFeatures is the feature map returned when no lookup could
// run: -1 for the age counters ("not measured"), 0 for the flags.
func SentinelDomainFeatures() map[string]float64 {
	return map[string]float64{
		"domain_age_days":     -1,
		"domain_expiry_days":  -1,
		"has_ssl_certificate": 0,
		"ssl_age_days":        -1,
		"registrar_known":     0,
		"domain_registered":   0,
	}
}

// Extract runs both probes concurrently against the URL's registrable
// domain and merges their outcomes over the sentinel defaults. Each probe's
// field set is applied atomically: a timed-out WHOIS lookup leaves all
// registration fields at their sentinels even if the TLS probe succeeded.
func (e *DomainExtractor) Extract(ctx context.Context, normalizedURL string) map[string]float64 {
	feats := SentinelDomainFeatures()

	registrable := RegistrableDomain(normalizedURL)
	if registrable == "" {
		return feats
	}

	var reg registrationInfo
	var cert certificateInfo

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg = e.lookupRegistration(gctx, registrable)
		return nil
	})
	g.Go(func() error {
		cert = e.probeCertificate(gctx, registrable)
		return nil
	})
	_ = g.Wait() // both probes are best-effort and never return errors

	if reg.Available {
		feats["domain_registered"] = 1
		if reg.AgeKnown {
			feats["domain_age_days"] = float64(reg.AgeDays)
		}
		if reg.ExpiryKnown {
			feats["domain_expiry_days"] = float64(reg.ExpiryDays)
		}
		if reg.RegistrarKnown {
			feats["registrar_known"] = 1
		}
	}
	if cert.Available {
		feats["has_ssl_certificate"] = 1
		feats["ssl_age_days"] = float64(cert.AgeDays)
	}
	return feats
}

// lookupRegistration queries WHOIS for the registrable domain, bounded by
// the configured timeout. Unparseable responses for subdomain-style inputs
// are not retried against a parent here because the input is already the
// eTLD+1.
func (e *DomainExtractor) lookupRegistration(ctx context.Context, domain string) registrationInfo {
	timeout := e.cfg.WhoisTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return registrationInfo{}
	}

	client := whois.NewClient()
	client.SetTimeout(timeout)

	raw, err := client.Whois(domain)
	if err != nil {
		e.logger.Debug("whois lookup failed", "domain", domain, "err", err)
		return registrationInfo{}
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		e.logger.Debug("whois parse failed", "domain", domain, "err", err)
		return registrationInfo{}
	}

	info := registrationInfo{Available: true}
	now := time.Now()

	if created, ok := parseWhoisDate(parsed.Domain.CreatedDate, parsed.Domain.CreatedDateInTime); ok {
		age := int(now.Sub(created).Hours() / 24)
		if age < 0 {
			age = 0
		}
		info.AgeDays = age
		info.AgeKnown = true
	}
	if expiry, ok := parseWhoisDate(parsed.Domain.ExpirationDate, parsed.Domain.ExpirationDateInTime); ok {
		days := int(expiry.Sub(now).Hours() / 24)
		if days < 0 {
			days = 0
		}
		info.ExpiryDays = days
		info.ExpiryKnown = true
	}
	if parsed.Registrar != nil && strings.TrimSpace(parsed.Registrar.Name) != "" {
		info.RegistrarKnown = true
	}
	return info
}

// parseWhoisDate prefers the parser's pre-parsed time and falls back to the
// known registrar date layouts.
func parseWhoisDate(raw string, parsed *time.Time) (time.Time, bool) {
	if parsed != nil && !parsed.IsZero() {
		return *parsed, true
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// probeCertificate performs a TLS handshake against the domain on 443 and
// reports the leaf certificate's age from its NotBefore timestamp.
func (e *DomainExtractor) probeCertificate(ctx context.Context, domain string) certificateInfo {
	dialCtx, cancel := context.WithTimeout(ctx, e.cfg.TLSTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: e.cfg.TLSTimeout},
		Config:    &tls.Config{ServerName: domain},
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(domain, "443"))
	if err != nil {
		e.logger.Debug("tls probe failed", "domain", domain, "err", err)
		return certificateInfo{}
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return certificateInfo{}
	}
	age := int(time.Since(certs[0].NotBefore).Hours() / 24)
	return certificateInfo{Available: true, AgeDays: age}
}
