package common

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestQueueHandlerProcessesInChunks(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var batches [][]int
	q := NewQueueHandler(func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, append([]int(nil), items...))
	}, 2, time.Hour)

	q.Add(1, 2, 3)
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	var all []int
	for _, b := range batches {
		assert.LessOrEqual(t, len(b), 2)
		all = append(all, b...)
	}
	assert.Equal(t, []int{1, 2, 3}, all)
	assert.Equal(t, 0, q.Len())
}

func TestQueueHandlerDropsAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	var processed atomic.Int32
	q := NewQueueHandler(func(items []string) {
		processed.Add(int32(len(items)))
	}, 10, time.Hour)
	q.Close()
	q.Add("late")
	q.Close()

	assert.Equal(t, int32(0), processed.Load())
}

func TestHandleSessionCookieIssuesAndKeepsId(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/colors", nil)
	id := HandleSessionCookie(rec, req)
	require.NotEmpty(t, id)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)

	again := httptest.NewRequest(http.MethodGet, "/api/colors", nil)
	again.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	assert.Equal(t, id, HandleSessionCookie(rec2, again))
	assert.Empty(t, rec2.Result().Cookies())
}

func TestSessionCookieDomainHasNoPort(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clothing_items/colors", nil)
	req.Host = "127.0.0.1:42053"
	HandleSessionCookie(rec, req)

	header := rec.Header().Get("Set-Cookie")
	assert.Contains(t, header, "Domain=127.0.0.1;")
	assert.NotContains(t, header, "42053")

	assert.Equal(t, "shop.example", cookieDomain("shop.example"))
	assert.Equal(t, "shop.example", cookieDomain(".shop.example:8443"))
}

func TestJsonHandlerAnswersPreflight(t *testing.T) {
	called := false
	h := JsonHandler(nil, func(w http.ResponseWriter, r *http.Request, sessionId string) error {
		called = true
		return nil
	})
	req := httptest.NewRequest(http.MethodOptions, "/api/colors", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestJsonHandlerWritesJson(t *testing.T) {
	h := JsonHandler(nil, func(w http.ResponseWriter, r *http.Request, sessionId string) error {
		return WriteJson(w, http.StatusOK, map[string]int{"page": 1})
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/clothing-items", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"page":1}`, rec.Body.String())
}

func TestServeRunsHooksOnShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	var hookRan atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- serveListener(ctx, zap.NewNop(), server, ln, time.Second, time.Second, []ShutdownHook{
			nil,
			func(ctx context.Context) error {
				hookRan.Store(true)
				return nil
			},
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, hookRan.Load())
}

func TestLoadTimeoutConfigOverrides(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "7")
	t.Setenv("WRITE_TIMEOUT", "nope")
	cfg := LoadTimeoutConfig(TimeoutConfig{Read: time.Second, Write: 2 * time.Second})
	assert.Equal(t, 7*time.Second, cfg.Read)
	assert.Equal(t, 2*time.Second, cfg.Write)
}
