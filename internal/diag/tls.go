package diag

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"

	"mytunnel_ops/internal/shared/types"
)

const (
	tlsDialTimeout    = 10 * time.Second
	certExpiryWarning = 30 * 24 * time.Hour
)

// tlsStage opens a TLS handshake over TCP purely to inspect whatever
// certificate the target presents on that port. The tunnel itself does not
// run over TCP, so this never affects the suite verdict.
func tlsStage(address, serverName string) types.TestOutcome {
	out := types.TestOutcome{Name: "tls", Kind: types.Optional}

	cert, err := fetchPeerCert(address, serverName)
	if err != nil {
		out.Result = types.Fail
		out.Detail = fmt.Sprintf("tls handshake with %s failed: %v (informational: the target may not serve TLS over TCP)", address, err)
		return out
	}

	var b strings.Builder
	fmt.Fprintf(&b, "subject=%s issuer=%s valid %s to %s",
		cert.Subject.CommonName,
		cert.Issuer.CommonName,
		cert.NotBefore.Format("2006-01-02"),
		cert.NotAfter.Format("2006-01-02"))

	now := time.Now()
	expired := false
	switch {
	case now.After(cert.NotAfter):
		expired = true
		fmt.Fprintf(&b, "; ERROR: certificate expired %s", cert.NotAfter.Format("2006-01-02"))
	case now.Add(certExpiryWarning).After(cert.NotAfter):
		fmt.Fprintf(&b, "; WARNING: certificate expires in %d days", int(cert.NotAfter.Sub(now).Hours()/24))
	}

	if err := verifyChain(address, serverName); err != nil {
		fmt.Fprintf(&b, "; chain verification failed: %v", err)
	} else {
		b.WriteString("; chain verification ok")
	}

	if expired {
		out.Result = types.Fail
	} else {
		out.Result = types.Pass
	}
	out.Detail = b.String()
	return out
}

// fetchPeerCert grabs the leaf certificate without verifying the chain, so
// expired or self-signed certificates can still be inspected.
func fetchPeerCert(address, serverName string) (*x509.Certificate, error) {
	dialer := &net.Dialer{Timeout: tlsDialTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", address, &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: true,
	})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("peer presented no certificate")
	}
	return certs[0], nil
}

// verifyChain repeats the handshake with verification enabled and reports
// the result separately from the inspection above.
func verifyChain(address, serverName string) error {
	dialer := &net.Dialer{Timeout: tlsDialTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", address, &tls.Config{
		ServerName: serverName,
	})
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}
