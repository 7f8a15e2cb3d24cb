package download

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrBadSignature     = errors.New("signature verification failed")
)

// Verification describes how a downloaded archive is checked. Valve
// publishes neither checksums nor signatures, so this only applies to
// mirrors that do.
type Verification struct {
	// SHA256 is the expected hex digest of the archive.
	SHA256 string
	// SignatureURL points to a detached OpenPGP signature of the archive.
	SignatureURL string
	// KeyringPath is an armored or binary public keyring used with SignatureURL.
	KeyringPath string
}

// Empty reports whether no verification is configured.
func (v Verification) Empty() bool {
	return v.SHA256 == "" && v.SignatureURL == ""
}

// Method indicates how an archive was verified.
type Method int

const (
	MethodNone Method = iota
	MethodSHA256
	MethodGPG
	MethodGPGAndSHA256
)

func (m Method) String() string {
	switch m {
	case MethodSHA256:
		return "SHA256"
	case MethodGPG:
		return "GPG"
	case MethodGPGAndSHA256:
		return "GPG+SHA256"
	default:
		return "None"
	}
}

// fetcher downloads auxiliary files such as signatures.
type fetcher interface {
	DownloadToFile(ctx context.Context, url, destPath string) error
}

// Verifier checks archives against a Verification.
type Verifier struct {
	want  Verification
	fetch fetcher
}

// NewVerifier creates a verifier that downloads signatures through fetch.
func NewVerifier(want Verification, fetch fetcher) *Verifier {
	return &Verifier{want: want, fetch: fetch}
}

// Verify checks the archive at path. Both checks run when both are configured.
func (v *Verifier) Verify(ctx context.Context, path string) (Method, error) {
	method := MethodNone

	if v.want.SignatureURL != "" {
		if v.want.KeyringPath == "" {
			return MethodNone, fmt.Errorf("%w: signature configured without a keyring", ErrBadSignature)
		}
		sigPath := path + ".sig"
		if err := v.fetch.DownloadToFile(ctx, v.want.SignatureURL, sigPath); err != nil {
			return MethodNone, fmt.Errorf("download signature: %w", err)
		}
		defer os.Remove(sigPath)

		if err := verifySignature(path, sigPath, v.want.KeyringPath); err != nil {
			return MethodNone, err
		}
		method = MethodGPG
	}

	if v.want.SHA256 != "" {
		actual, err := calculateSHA256(path)
		if err != nil {
			return MethodNone, fmt.Errorf("calculate checksum: %w", err)
		}
		if !strings.EqualFold(actual, strings.TrimSpace(v.want.SHA256)) {
			return MethodNone, fmt.Errorf("%w:\nactual:   %s\nexpected: %s", ErrChecksumMismatch, actual, v.want.SHA256)
		}
		if method == MethodGPG {
			method = MethodGPGAndSHA256
		} else {
			method = MethodSHA256
		}
	}

	return method, nil
}

func verifySignature(path, sigPath, keyringPath string) error {
	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return err
	}

	signed, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("read signature: %w", err)
	}

	// armored first, then binary
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader(signed), bytes.NewReader(sig), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(keyring, bytes.NewReader(signed), bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return nil
}

func loadKeyring(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return keyring, nil
}

func calculateSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
