package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duck-rage/duck-rage/internal/provision"
	"github.com/duck-rage/duck-rage/internal/registry"
)

// --- Fakes ---

type fakeCursor struct {
	rows [][]string
	err  error
	done bool
}

func (c *fakeCursor) NextBatch(_ context.Context) ([][]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.done {
		return nil, nil
	}
	c.done = true
	return c.rows, nil
}

type fakeFunction struct {
	name    string
	cursor  *fakeCursor
	bindErr error
}

func (f *fakeFunction) Name() string      { return f.name }
func (f *fakeFunction) Columns() []string { return []string{"status"} }

func (f *fakeFunction) Bind(_ context.Context, _ []string) (registry.Cursor, error) {
	if f.bindErr != nil {
		return nil, f.bindErr
	}
	return f.cursor, nil
}

type fakePinger struct{ err error }

func (p *fakePinger) Ping(_ context.Context) error { return p.err }

// --- Test Helpers ---

func newTestApp(t *testing.T, fns []registry.Function, pinger Pinger) *fiber.App {
	t.Helper()
	reg := registry.New()
	for _, fn := range fns {
		require.NoError(t, reg.Register(fn))
	}
	app := fiber.New()
	RegisterRoutes(app, NewFunctionHandler(zap.NewNop(), reg), pinger)
	return app
}

func callFunction(t *testing.T, app *fiber.App, name, body string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/functions/"+name, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// --- Call ---

func TestCall_Success(t *testing.T) {
	fn := &fakeFunction{
		name:   "duck_rage",
		cursor: &fakeCursor{rows: [][]string{{"Secret 'duck_rage_orders' created for svc@db:5432/orders"}}},
	}
	app := newTestApp(t, []registry.Function{fn}, &fakePinger{})

	resp := callFunction(t, app, "duck_rage", `{"args": ["postgres","db","5432","orders","svc","s.age","pw","id.txt"]}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result CallResponse
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "duck_rage", result.Function)
	assert.Equal(t, []string{"status"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Contains(t, result.Rows[0][0], "duck_rage_orders")
}

func TestCall_UnknownFunction(t *testing.T) {
	app := newTestApp(t, nil, &fakePinger{})

	resp := callFunction(t, app, "nope", `{"args": []}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCall_BindFailure(t *testing.T) {
	fn := &fakeFunction{name: "duck_rage", bindErr: fmt.Errorf("unknown db_type \"oracle\"")}
	app := newTestApp(t, []registry.Function{fn}, &fakePinger{})

	resp := callFunction(t, app, "duck_rage", `{"args": ["oracle"]}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(respBody), "oracle")
}

func TestCall_ExecutionFailure(t *testing.T) {
	pollErr := fmt.Errorf("%w: connection reset", provision.ErrStatementExecution)
	fn := &fakeFunction{name: "duck_rage", cursor: &fakeCursor{err: pollErr}}
	app := newTestApp(t, []registry.Function{fn}, &fakePinger{})

	resp := callFunction(t, app, "duck_rage", `{"args": []}`)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestCall_BadBody(t *testing.T) {
	fn := &fakeFunction{name: "duck_rage", cursor: &fakeCursor{}}
	app := newTestApp(t, []registry.Function{fn}, &fakePinger{})

	resp := callFunction(t, app, "duck_rage", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// --- List / Health ---

func TestList(t *testing.T) {
	fn := &fakeFunction{name: "duck_rage", cursor: &fakeCursor{}}
	app := newTestApp(t, []registry.Function{fn}, &fakePinger{})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/functions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(respBody), "duck_rage")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil, &fakePinger{})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealth_HostUnreachable(t *testing.T) {
	app := newTestApp(t, nil, &fakePinger{err: errors.New("connection refused")})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(respBody), "degraded")
}
