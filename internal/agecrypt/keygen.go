package agecrypt

import (
	"fmt"
	"os"
	"time"

	"filippo.io/age"
)

// GenerateIdentity creates a fresh X25519 identity, writes it to path in the
// rage-keygen text format with owner-only permissions, and returns the public
// recipient string to encrypt against. It refuses to overwrite an existing
// file so a live identity cannot be clobbered by accident.
func GenerateIdentity(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generate identity: %w", err)
	}

	recipient := identity.Recipient().String()
	contents := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
		time.Now().Format(time.RFC3339), recipient, identity.String())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("write identity file %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(contents); err != nil {
		return "", fmt.Errorf("write identity file %q: %w", path, err)
	}
	return recipient, nil
}
