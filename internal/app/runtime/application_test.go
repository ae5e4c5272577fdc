package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/blog_service/internal/config"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Database.DSN = filepath.Join(t.TempDir(), "blog.db")
	cfg.Database.MaxOpenConns = 4
	return cfg
}

// start runs a in the background and returns its base URL.
func start(t *testing.T, a *Application) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	addr, err := a.Addr(waitCtx)
	require.NoError(t, err)

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
		require.NoError(t, a.Shutdown(context.Background()))
	})
	return "http://" + addr.String()
}

func TestNewApplicationRequiresConfig(t *testing.T) {
	_, err := NewApplication(context.Background(), nil, logger.NewNop())
	assert.Error(t, err)
}

func TestNewApplicationRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mysql"
	_, err := NewApplication(context.Background(), cfg, logger.NewNop())
	assert.ErrorContains(t, err, "configure stores")
}

func TestApplicationServesSQLite(t *testing.T) {
	a, err := NewApplication(context.Background(), testConfig(t), logger.NewNop())
	require.NoError(t, err)
	base := start(t, a)

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := json.Marshal(map[string]string{"title": "Hello", "slug": "hello", "body": "first"})
	resp, err = http.Post(base+"/posts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var created struct {
		ID   int64  `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(1), created.ID)

	resp, err = http.Get(fmt.Sprintf("%s/posts/%d", base, created.ID))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplicationMemoryDriverWithRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database = config.DatabaseConfig{Driver: config.DriverMemory}
	cfg.HTTP.RateLimit = 1
	cfg.HTTP.RateBurst = 1

	a, err := NewApplication(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	base := start(t, a)

	resp, err := http.Get(base + "/posts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/posts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
