package backend

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/bughunter/bughunter/internal/domain/scan"
)

const certExpiryWarningWindow = 30 * 24 * time.Hour

// TLSCheck inspects the target's certificate and negotiated protocol.
type TLSCheck struct {
	Timeout time.Duration
}

// Name returns the backend identifier.
func (c *TLSCheck) Name() string {
	return "tls"
}

// Probe performs a TLS handshake with the target and reports expired
// or soon-expiring certificates, legacy protocol versions, and
// self-signed certificates. Certificate verification is skipped so an
// expired certificate is reported as a finding instead of aborting the
// handshake.
func (c *TLSCheck) Probe(ctx context.Context, target scan.Target) ([]scan.Finding, error) {
	port := target.Port()
	if port == "" || target.Scheme() == "http" {
		port = "443"
	}
	address := net.JoinHostPort(target.Host(), port)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.Timeout},
		Config: &tls.Config{
			InsecureSkipVerify: true, // inspection only, findings report the problems
			ServerName:         target.Host(),
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("tls handshake with %s: %w", address, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	now := time.Now().UTC()

	var findings []scan.Finding

	if state.Version < tls.VersionTLS12 {
		findings = append(findings, scan.Finding{
			Type:          "weak_tls_version",
			Target:        target.URL(),
			Severity:      scan.SeverityHigh,
			Description:   fmt.Sprintf("Server negotiated %s", tlsVersionName(state.Version)),
			Details:       []string{"Only TLS 1.2 and TLS 1.3 are considered acceptable"},
			SourceBackend: c.Name(),
			DiscoveredAt:  now,
		})
	}

	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]

		if cert.NotAfter.Before(now) {
			findings = append(findings, scan.Finding{
				Type:          "expired_certificate",
				Target:        target.URL(),
				Severity:      scan.SeverityCritical,
				Description:   "TLS certificate has expired",
				Details:       []string{fmt.Sprintf("Certificate expired on %s", cert.NotAfter.Format(time.RFC3339))},
				SourceBackend: c.Name(),
				DiscoveredAt:  now,
			})
		} else if cert.NotAfter.Sub(now) < certExpiryWarningWindow {
			findings = append(findings, scan.Finding{
				Type:          "certificate_expiring_soon",
				Target:        target.URL(),
				Severity:      scan.SeverityLow,
				Description:   "TLS certificate expires within 30 days",
				Details:       []string{fmt.Sprintf("Certificate expires on %s", cert.NotAfter.Format(time.RFC3339))},
				SourceBackend: c.Name(),
				DiscoveredAt:  now,
			})
		}

		if cert.Subject.String() == cert.Issuer.String() {
			findings = append(findings, scan.Finding{
				Type:          "self_signed_certificate",
				Target:        target.URL(),
				Severity:      scan.SeverityMedium,
				Description:   "Server presented a self-signed certificate",
				Details:       []string{"Subject and issuer are identical: " + cert.Subject.String()},
				SourceBackend: c.Name(),
				DiscoveredAt:  now,
			})
		}
	}

	return findings, nil
}

func tlsVersionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("unknown protocol (0x%04x)", version)
	}
}
