package discord

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor/powershell/config"
)

var token = strings.Repeat("t", 59) + ".abc"

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Default().Discord
	cfg.BaseURL = srv.URL
	cfg.TimeoutSeconds = 2
	cfg.RetryWaitMillis = 10
	cfg.MinIntervalMillis = 0
	return NewClient(cfg), srv
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"abc", "Bot abc"}, Candidates("  abc "))
	assert.Equal(t, []string{"Bot abc", "abc"}, Candidates("bot abc"))
	assert.Equal(t, []string{"Bot abc", "abc"}, Candidates("BOT  abc"))
	assert.Equal(t, []string{"Bot", "Bot Bot"}, Candidates("Bot "), "trailing space is trimmed before the prefix check")
}

func TestResolveAuth_BotPrefixFallback(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/users/@me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bot "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "401: Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "123456789012345678", "username": "helper"}`))
	})

	auth, err := c.ResolveAuth(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Bot "+token, auth.Header)
	assert.Equal(t, "123456789012345678", auth.UserID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolveAuth_Exhausted(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.ResolveAuth(context.Background(), token)
	assert.True(t, errs.Is(err, errs.AuthExhausted))
}

func TestResolveAuth_OtherStatusIsTerminal(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "oops"}`))
	})
	_, err := c.ResolveAuth(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "oops")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolveAuth_ConnectFailureIsTerminal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := config.Default().Discord
	cfg.BaseURL = "http://" + addr
	cfg.TimeoutSeconds = 2
	_, err = NewClient(cfg).ResolveAuth(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
}

func TestResolveAuth_Timeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})
	c.http.SetTimeout(100 * time.Millisecond)
	_, err := c.ResolveAuth(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
	assert.Contains(t, err.Error(), "timed out")
}

func TestResolveAuth_EmptyToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.ResolveAuth(context.Background(), "   ")
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

func TestRateLimitRetry(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message": "You are being rate limited.", "retry_after": 0.05}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "42", "username": "helper"}`))
	})

	out, err := c.CheckToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "token valid - user: helper (42)", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRateLimitRetry_GivesUp(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.maxRetries = 2

	_, err := c.TokenInfo(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCheckToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "401: Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "7", "username": "me"}`))
	})

	out, err := c.CheckToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "token valid - user: me (7)", out)

	_, err = c.CheckToken(context.Background(), strings.Repeat("x", 60))
	assert.True(t, errs.Is(err, errs.AuthExhausted))
	assert.Contains(t, err.Error(), "401: Unauthorized")

	_, err = c.CheckToken(context.Background(), "short")
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

func TestTokenInfo(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{\n  \"id\": \"7\",\n  \"username\": \"me\"\n}"))
	})
	out, err := c.TokenInfo(context.Background(), token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","username":"me"}`, out)
	assert.NotContains(t, out, "\n")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "short", MaskToken("short"))
	assert.Equal(t, "abcdefghij", MaskToken("abcdefghij"))
	assert.Equal(t, "abcdef...wxyz", MaskToken("abcdefghijklmnopqrstuvwxyz"))
}
