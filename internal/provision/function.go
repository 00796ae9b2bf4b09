// Package provision implements the duck_rage table function: it decrypts a
// password from an age-encrypted secrets file and registers it as a named
// database credential on the host connection.
package provision

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duck-rage/duck-rage/internal/agecrypt"
	"github.com/duck-rage/duck-rage/internal/audit"
	"github.com/duck-rage/duck-rage/internal/backend"
	"github.com/duck-rage/duck-rage/internal/exec"
	"github.com/duck-rage/duck-rage/internal/payload"
	"github.com/duck-rage/duck-rage/internal/registry"
	"github.com/duck-rage/duck-rage/pkg/sqlmask"
)

// FunctionName is the name the operation is registered under.
const FunctionName = "duck_rage"

// Usage describes the positional calling convention. It is appended to every
// bind-time failure so the caller sees the root cause and the convention.
const Usage = `Usage: duck_rage(
  db_type       VARCHAR  -- 'postgres' or 'mysql'
  host          VARCHAR  -- hostname or IP
  port          INTEGER  -- e.g. 5432
  database      VARCHAR  -- database name
  user          VARCHAR  -- login user
  secrets_file  VARCHAR  -- path to age-encrypted JSON file
  secret_key    VARCHAR  -- JSON key whose value is the password
  identity_file VARCHAR  -- path to age identity file (duck-rage keygen output)
)`

var (
	ErrInvalidPort        = errors.New("invalid port")
	ErrArgCount           = errors.New("wrong number of arguments")
	ErrStatementExecution = errors.New("registration statement failed")
)

// Auditor publishes a confirmation event after a successful registration.
type Auditor interface {
	PublishSecretProvisioned(ctx context.Context, ev audit.Event) error
}

// Function is the registered duck_rage operation. It is stateless across
// calls; all per-call state lives on the Cursor returned by Bind.
type Function struct {
	executor exec.Executor
	logger   *zap.Logger
	auditor  Auditor // optional, may be nil
}

// New constructs the operation around the host executor. auditor may be nil
// to disable audit publishing.
func New(executor exec.Executor, logger *zap.Logger, auditor Auditor) *Function {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Function{
		executor: executor,
		logger:   logger,
		auditor:  auditor,
	}
}

func (f *Function) Name() string { return FunctionName }

func (f *Function) Columns() []string { return []string{"status"} }

// Bind parses the eight positional arguments, decrypts the secret, and
// compiles the registration statement. The password is embedded into the
// statement here and not retained anywhere else; after Bind returns, the
// statement text is the sole carrier of the secret.
func (f *Function) Bind(ctx context.Context, args []string) (registry.Cursor, error) {
	if len(args) != 8 {
		return nil, fmt.Errorf("%w: expected 8, got %d\n\n%s", ErrArgCount, len(args), Usage)
	}

	kind, err := backend.ParseKind(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w\n\n%s", err, Usage)
	}

	host := args[1]

	port64, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w %q: must be an integer\n\n%s", ErrInvalidPort, args[2], Usage)
	}
	port := int(port64)

	database := args[3]
	user := args[4]
	secretsFile := args[5]
	secretKey := args[6]
	identityFile := args[7]

	provider := backend.ProviderFor(kind)

	plaintext, err := agecrypt.Decrypt(secretsFile, identityFile)
	if err != nil {
		return nil, fmt.Errorf("%w\n\n%s", err, Usage)
	}

	password, err := payload.Extract(plaintext, secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w\n\n%s", err, Usage)
	}

	stmt := provider.CreateSecretSQL(host, port, database, user, password)

	invocationID := uuid.New()
	f.logger.Debug("provision.bound",
		zap.String("invocation_id", invocationID.String()),
		zap.String("backend", kind.String()),
		zap.String("host", host),
		zap.Int("port", port),
		zap.String("database", database),
		zap.String("user", user),
		zap.String("statement", sqlmask.MaskStatement(stmt)),
	)

	return &cursor{
		fn:           f,
		invocationID: invocationID,
		kind:         kind,
		host:         host,
		port:         port,
		database:     database,
		user:         user,
		statement:    stmt,
	}, nil
}
