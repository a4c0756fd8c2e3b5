package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/calc/api/rest"
	"yqhp/calc/internal/session"
	"yqhp/calc/internal/symtab"
)

// startTestServer runs a calculator server on a random local port.
func startTestServer(t *testing.T) (*rest.Server, string) {
	t.Helper()

	cfg := rest.DefaultConfig()
	cfg.EnableRequestLog = false
	server := rest.NewServer(session.New(), cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return server, "http://" + ln.Addr().String()
}

func newTestClient(url string) *Client {
	return NewClient(&Config{ServerURL: url + "/", RequestTimeout: 5 * time.Second})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(nil)
	defer c.Close()
	assert.Equal(t, "http://localhost:8080", c.config.ServerURL)
	assert.Equal(t, 10*time.Second, c.config.RequestTimeout)
}

func TestClient_RoundTrip(t *testing.T) {
	server, url := startTestServer(t)
	c := newTestClient(url)
	defer c.Close()

	id, err := c.Health()
	require.NoError(t, err)
	assert.Equal(t, server.Session().ID, id)

	resp, err := c.Eval("total = 6 * 7")
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Result)
	assert.Empty(t, resp.Diagnostics)

	resp, err = c.Eval("total / 0")
	require.NoError(t, err)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "divide by zero", resp.Diagnostics[0].Message)

	vars, err := c.Variables()
	require.NoError(t, err)
	assert.Equal(t, []symtab.Variable{{Name: "total", Value: 42}}, vars.Variables)

	require.NoError(t, c.Reset())
	vars, err = c.Variables()
	require.NoError(t, err)
	assert.Empty(t, vars.Variables)
}

func TestClient_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	c := NewClient(&Config{ServerURL: url, RequestTimeout: time.Second})
	defer c.Close()

	_, err = c.Eval("1")
	assert.Error(t, err)
}

func TestStatusError(t *testing.T) {
	err := error(&StatusError{Code: fiber.StatusServiceUnavailable})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Retryable())
	assert.Equal(t, "unexpected status 503", se.Error())

	se = &StatusError{Code: fiber.StatusBadRequest, Message: "bad body"}
	assert.False(t, se.Retryable())
	assert.Equal(t, "status 400: bad body", se.Error())
}

func TestIsRetryableError(t *testing.T) {
	for _, code := range []int{503, 504, 502, 429, 408} {
		assert.True(t, IsRetryableError(code), code)
	}
	for _, code := range []int{200, 400, 404, 500} {
		assert.False(t, IsRetryableError(code), code)
	}
}
