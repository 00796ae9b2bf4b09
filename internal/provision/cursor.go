package provision

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duck-rage/duck-rage/internal/audit"
	"github.com/duck-rage/duck-rage/internal/backend"
	"github.com/duck-rage/duck-rage/internal/metrics"
)

// Call lifecycle. A cursor starts Bound; the poll that wins the atomic
// transition to Executed runs the statement and emits the confirmation row;
// every later poll observes a non-Bound state and emits nothing.
const (
	stateBound int32 = iota
	stateExecuted
	stateExhausted
)

type cursor struct {
	fn           *Function
	invocationID uuid.UUID
	kind         backend.Kind
	host         string
	port         int
	database     string
	user         string
	statement    string

	state atomic.Int32
}

// NextBatch executes the registration statement on the first poll and emits
// the single confirmation row. The state flips before execution, so even a
// failed execution exhausts this call; only a fresh Bind re-attempts it.
func (c *cursor) NextBatch(ctx context.Context) ([][]string, error) {
	if !c.state.CompareAndSwap(stateBound, stateExecuted) {
		c.state.CompareAndSwap(stateExecuted, stateExhausted)
		return nil, nil
	}

	start := time.Now()
	err := c.fn.executor.Execute(ctx, c.statement)
	metrics.ObserveDuration(metrics.StatementDuration, start, c.kind.String())

	if err != nil {
		metrics.IncProvision(c.kind.String(), "error")
		c.fn.logger.Error("provision.statement_failed",
			zap.String("invocation_id", c.invocationID.String()),
			zap.String("backend", c.kind.String()),
			zap.String("database", c.database),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrStatementExecution, err)
	}

	metrics.IncProvision(c.kind.String(), "ok")

	secretName := "duck_rage_" + c.database
	status := fmt.Sprintf("Secret '%s' created for %s@%s:%d/%s",
		secretName, c.user, c.host, c.port, c.database)

	c.fn.logger.Info("provision.secret_created",
		zap.String("invocation_id", c.invocationID.String()),
		zap.String("backend", c.kind.String()),
		zap.String("secret_name", secretName),
		zap.String("host", c.host),
		zap.Int("port", c.port),
		zap.String("database", c.database),
		zap.String("user", c.user),
	)

	// Audit publishing is best effort; the credential is already registered.
	if c.fn.auditor != nil {
		ev := audit.Event{
			ID:            uuid.New(),
			CorrelationID: c.invocationID,
			Backend:       c.kind.String(),
			SecretName:    secretName,
			Host:          c.host,
			Port:          c.port,
			Database:      c.database,
			User:          c.user,
		}
		if err := c.fn.auditor.PublishSecretProvisioned(ctx, ev); err != nil {
			c.fn.logger.Warn("provision.audit_publish_failed",
				zap.String("invocation_id", c.invocationID.String()),
				zap.Error(err),
			)
		}
	}

	return [][]string{{status}}, nil
}
