// Package backend models the closed set of database backends a credential
// can be registered for, and builds the registration statement for each.
package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a supported database backend.
type Kind int

const (
	Postgres Kind = iota
	MySQL
)

var ErrUnsupportedKind = errors.New("unknown db_type")

// ParseKind parses a backend identifier case-insensitively. Recognized
// aliases: "postgres"/"postgresql" and "mysql".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	default:
		return 0, fmt.Errorf("%w %q, supported: postgres, mysql", ErrUnsupportedKind, s)
	}
}

func (k Kind) String() string {
	switch k {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Provider supplies everything that differs between database backends.
// Providers are stateless and safe to share across calls.
type Provider interface {
	// SecretType is the secret TYPE keyword used in the registration
	// statement (e.g. "postgres", "mysql").
	SecretType() string

	// CreateSecretSQL builds the full CREATE OR REPLACE SECRET statement.
	// The secret is named duck_rage_<database>.
	CreateSecretSQL(host string, port int, database, user, password string) string
}

// ProviderFor returns the Provider for a parsed Kind.
func ProviderFor(k Kind) Provider {
	switch k {
	case MySQL:
		return mysqlProvider{}
	default:
		return postgresProvider{}
	}
}

type postgresProvider struct{}

func (postgresProvider) SecretType() string { return "postgres" }

func (p postgresProvider) CreateSecretSQL(host string, port int, database, user, password string) string {
	return createSecretSQL(p.SecretType(), host, port, database, user, password)
}

type mysqlProvider struct{}

func (mysqlProvider) SecretType() string { return "mysql" }

func (p mysqlProvider) CreateSecretSQL(host string, port int, database, user, password string) string {
	return createSecretSQL(p.SecretType(), host, port, database, user, password)
}

// createSecretSQL is shared by all backends; only the TYPE keyword varies.
// CREATE OR REPLACE makes re-provisioning idempotent: an existing secret of
// the same name is overwritten, never an error.
func createSecretSQL(secretType, host string, port int, database, user, password string) string {
	return fmt.Sprintf(
		"CREATE OR REPLACE SECRET duck_rage_%s ( TYPE %s, HOST '%s', PORT %d, DATABASE '%s', USER '%s', PASSWORD '%s' )",
		EscapeString(database),
		secretType,
		EscapeString(host),
		port,
		EscapeString(database),
		EscapeString(user),
		EscapeString(password),
	)
}

// EscapeString doubles single quotes for safe embedding in SQL string literals.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
