package tlsutil

import (
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
)

// Decoder checks that PEM credential files referenced by the configuration
// actually decode. It satisfies config.CredentialDecoder.
type Decoder struct{}

func (Decoder) DecodeCertificate(path string) error {
	return DecodeCertificate(path)
}

func (Decoder) DecodePrivateKey(path string) error {
	return DecodePrivateKey(path)
}

// DecodeCertificate parses every CERTIFICATE block in the PEM file at path.
// A file without a single valid certificate is an error.
func DecodeCertificate(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read certificate %q", path)
	}

	found := 0
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		if _, err := x509.ParseCertificate(block.Bytes); err != nil {
			return errors.Wrapf(err, "parse certificate %q", path)
		}
		found++
	}

	if found == 0 {
		return errors.Errorf("no CERTIFICATE blocks found in %q", path)
	}
	return nil
}

// DecodePrivateKey parses the first PEM block in the file at path as a
// PKCS#8, PKCS#1 or EC private key, depending on the block type.
func DecodePrivateKey(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read private key %q", path)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return errors.Errorf("no PEM data found in %q", path)
	}

	switch block.Type {
	case "PRIVATE KEY":
		_, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		_, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		_, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		return errors.Errorf("unsupported PEM block %q in %q", block.Type, path)
	}
	return errors.Wrapf(err, "parse private key %q", path)
}
