package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/GophTasks/internal/client/transport"
)

func parseCert(t *testing.T, data []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("not a certificate PEM: %q", data)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cert
}

func TestNewCA(t *testing.T) {
	ca, err := NewCA("GophTasks dev CA")
	if err != nil {
		t.Fatalf("NewCA: %v", err)
	}
	if !ca.Cert.IsCA || !ca.Cert.BasicConstraintsValid {
		t.Error("CA certificate should have IsCA and BasicConstraintsValid")
	}
	if ca.Cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		t.Error("CA must be able to sign certificates")
	}
	if d := ca.Cert.NotAfter.Sub(ca.Cert.NotBefore); d < 9*365*24*time.Hour {
		t.Errorf("CA validity too short: %v", d)
	}
}

func TestIssueServer(t *testing.T) {
	ca, err := NewCA("test")
	if err != nil {
		t.Fatal(err)
	}

	certPEM, keyPEM, err := ca.IssueServer([]string{"localhost", "127.0.0.1"})
	if err != nil {
		t.Fatalf("IssueServer: %v", err)
	}
	cert := parseCert(t, certPEM)
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q; want localhost", cert.Subject.CommonName)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || cert.IPAddresses[0].String() != "127.0.0.1" {
		t.Errorf("IPAddresses = %v", cert.IPAddresses)
	}
	if err := cert.CheckSignatureFrom(ca.Cert); err != nil {
		t.Errorf("certificate not signed by CA: %v", err)
	}
	if !strings.Contains(string(keyPEM), "EC PRIVATE KEY") {
		t.Errorf("unexpected key PEM: %q", keyPEM)
	}

	if _, _, err := ca.IssueServer(nil); err == nil {
		t.Error("expected error for no hosts")
	}
}

func TestWriteBundleAndLoadCA(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewCA("test")
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteBundle(dir, ca, []string{"localhost"}); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	for _, name := range []string{CACertFile, CAKeyFile, ServerCertFile, ServerKeyFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	info, err := os.Stat(filepath.Join(dir, ServerKeyFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("server key mode = %v; want 0600", info.Mode().Perm())
	}

	loaded, err := LoadCA(filepath.Join(dir, CACertFile), filepath.Join(dir, CAKeyFile))
	if err != nil {
		t.Fatalf("LoadCA: %v", err)
	}
	if !loaded.Cert.Equal(ca.Cert) {
		t.Error("loaded CA differs from the written one")
	}
}

func TestLoadCA_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pem")
	if err := os.WriteFile(bad, []byte("not pem"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCA(filepath.Join(dir, "missing.crt"), bad); err == nil {
		t.Error("expected error for missing cert")
	}
	if _, err := LoadCA(bad, bad); err == nil || !strings.Contains(err.Error(), "invalid CA cert PEM") {
		t.Errorf("unexpected error: %v", err)
	}

	// A leaf certificate cannot act as an authority.
	ca, err := NewCA("test")
	if err != nil {
		t.Fatal(err)
	}
	certPEM, keyPEM, err := ca.IssueServer([]string{"localhost"})
	if err != nil {
		t.Fatal(err)
	}
	leafCert := filepath.Join(dir, "leaf.crt")
	leafKey := filepath.Join(dir, "leaf.key")
	_ = os.WriteFile(leafCert, certPEM, 0o600)
	_ = os.WriteFile(leafKey, keyPEM, 0o600)
	if _, err := LoadCA(leafCert, leafKey); err == nil {
		t.Error("expected error for non-CA certificate")
	}
}

// The generated bundle is what the client trusts through --ca-file.
func TestBundleServesTLS(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewCA("test")
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteBundle(dir, ca, []string{"localhost", "127.0.0.1"}); err != nil {
		t.Fatal(err)
	}
	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, ServerCertFile), filepath.Join(dir, ServerKeyFile))
	if err != nil {
		t.Fatalf("LoadX509KeyPair: %v", err)
	}

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}}
	srv.StartTLS()
	defer srv.Close()

	client, err := transport.NewHTTPClient(filepath.Join(dir, CACertFile), 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET over generated TLS: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
