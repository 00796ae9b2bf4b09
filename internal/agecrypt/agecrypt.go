// Package agecrypt unlocks age-encrypted containers with X25519 identity
// files (the output of `duck-rage keygen` or rage-keygen).
package agecrypt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// Sentinel errors, one per independent failure point. Wrapped errors carry
// the offending path; they never carry plaintext or key material.
var (
	ErrRead          = errors.New("file unreadable")
	ErrIdentityParse = errors.New("identity file malformed")
	ErrIdentityLoad  = errors.New("identity file contains no identities")
	ErrDecrypt       = errors.New("decryption failed")
)

// Decrypt reads the age container at path and the identity file at
// identityPath, and returns the decrypted payload. The container header
// records which recipient it was sealed to, so age tries every loaded
// identity and exactly one (or none) unlocks it.
//
// The returned bytes live only in memory; nothing decrypted is written
// anywhere, and no error ever echoes payload or key bytes.
func Decrypt(path, identityPath string) ([]byte, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secrets file %q: %w: %v", path, ErrRead, err)
	}

	identities, err := loadIdentities(identityPath)
	if err != nil {
		return nil, err
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identities...)
	if err != nil {
		return nil, fmt.Errorf("cannot decrypt %q with identities from %q: %w: %v",
			path, identityPath, ErrDecrypt, err)
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read decrypted content of %q: %w: %v", path, ErrDecrypt, err)
	}
	return plaintext, nil
}

// loadIdentities parses an identity file in the rage-keygen text format:
// one AGE-SECRET-KEY per line, with '#' comments and blank lines ignored.
func loadIdentities(identityPath string) ([]age.Identity, error) {
	contents, err := os.ReadFile(identityPath)
	if err != nil {
		return nil, fmt.Errorf("identity file %q: %w: %v", identityPath, ErrRead, err)
	}

	var identities []age.Identity
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := age.ParseX25519Identity(line)
		if err != nil {
			return nil, fmt.Errorf("identity file %q: %w: %v", identityPath, ErrIdentityParse, err)
		}
		identities = append(identities, id)
	}

	if len(identities) == 0 {
		return nil, fmt.Errorf("identity file %q: %w", identityPath, ErrIdentityLoad)
	}
	return identities, nil
}
