// Package testinfra starts disposable PostgreSQL servers for integration tests.
package testinfra

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// LocalHosts are the names a container port published on this machine answers to.
var LocalHosts = []string{"localhost", "127.0.0.1"}

// TLSFiles locates a throwaway root certificate and the server pair it signed.
type TLSFiles struct {
	RootCert   string
	ServerCert string
	ServerKey  string
}

// Dir is where the files live.
func (f *TLSFiles) Dir() string { return filepath.Dir(f.RootCert) }

type identity struct {
	cert *x509.Certificate
	der  []byte
	key  *ecdsa.PrivateKey
}

// IssueServerTLS writes a fresh root and a server certificate for hosts into
// dir. With no hosts the certificate covers LocalHosts.
func IssueServerTLS(dir string, hosts ...string) (*TLSFiles, error) {
	if len(hosts) == 0 {
		hosts = LocalHosts
	}

	root, err := issue(&x509.Certificate{
		Subject:               pkix.Name{CommonName: "tourload test root"},
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("issue root: %w", err)
	}

	leaf := &x509.Certificate{
		Subject:     pkix.Name{CommonName: hosts[0]},
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			leaf.IPAddresses = append(leaf.IPAddresses, ip)
			continue
		}
		leaf.DNSNames = append(leaf.DNSNames, h)
	}
	server, err := issue(leaf, root)
	if err != nil {
		return nil, fmt.Errorf("issue server certificate: %w", err)
	}

	serverKey, err := x509.MarshalECPrivateKey(server.key)
	if err != nil {
		return nil, fmt.Errorf("encode server key: %w", err)
	}

	files := &TLSFiles{
		RootCert:   filepath.Join(dir, "root.crt"),
		ServerCert: filepath.Join(dir, "server.crt"),
		ServerKey:  filepath.Join(dir, "server.key"),
	}
	for _, out := range []struct {
		path  string
		block *pem.Block
	}{
		{files.RootCert, &pem.Block{Type: "CERTIFICATE", Bytes: root.der}},
		{files.ServerCert, &pem.Block{Type: "CERTIFICATE", Bytes: server.der}},
		{files.ServerKey, &pem.Block{Type: "EC PRIVATE KEY", Bytes: serverKey}},
	} {
		// postgres refuses a key file readable by others.
		if err := os.WriteFile(out.path, pem.EncodeToMemory(out.block), 0o600); err != nil {
			return nil, fmt.Errorf("write %s: %w", filepath.Base(out.path), err)
		}
	}
	return files, nil
}

// issue signs tmpl with a new P-256 key. A nil issuer makes it self-signed.
func issue(tmpl *x509.Certificate, issuer *identity) (*identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, err
	}
	tmpl.SerialNumber = serial
	tmpl.NotBefore = time.Now().Add(-time.Minute)
	tmpl.NotAfter = time.Now().Add(time.Hour)

	parent, signer := tmpl, key
	if issuer != nil {
		parent, signer = issuer.cert, issuer.key
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, signer)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &identity{cert: cert, der: der, key: key}, nil
}
