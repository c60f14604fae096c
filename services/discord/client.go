// Package discord 解析 Discord Authorization 头并查询令牌信息
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor/powershell/config"
	"confutils-worker/services/logging"
)

const mePath = "/users/@me"

// Client Discord REST 客户端，请求之间按最小间隔节流，429 时按服务端要求等待后重试
type Client struct {
	http       *resty.Client
	pace       *rate.Limiter
	maxRetries int
	retryWait  time.Duration
}

// NewClient 按配置创建客户端
func NewClient(cfg config.DiscordConfig) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetHeader("Content-Type", "application/json")

	limit := rate.Inf
	if cfg.MinIntervalMillis > 0 {
		limit = rate.Every(time.Duration(cfg.MinIntervalMillis) * time.Millisecond)
	}
	return &Client{
		http:       c,
		pace:       rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		retryWait:  time.Duration(cfg.RetryWaitMillis) * time.Millisecond,
	}
}

// get 发送 GET 请求；只有 429 会重试
func (c *Client) get(ctx context.Context, path, authorization string) (*resty.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.pace.Wait(ctx); err != nil {
			return nil, transportError(ctx, err)
		}
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", authorization).
			Get(path)
		if err != nil {
			return nil, transportError(ctx, err)
		}
		if resp.StatusCode() != 429 || attempt >= c.maxRetries {
			return resp, nil
		}

		wait := c.retryAfter(resp)
		logging.Context(ctx).Warnw("discord rate limited", "path", path, "retryAfter", wait.String(), "attempt", attempt+1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errs.Cancelled("discord request")
		case <-timer.C:
		}
	}
}

// retryAfter 优先使用响应体的 retry_after（秒），其次 Retry-After 头
func (c *Client) retryAfter(resp *resty.Response) time.Duration {
	var body struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil && body.RetryAfter > 0 {
		return time.Duration(body.RetryAfter * float64(time.Second))
	}
	if h := resp.Header().Get("Retry-After"); h != "" {
		if secs, err := strconv.ParseFloat(h, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return c.retryWait
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errs.Cancelled("discord request")
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errs.Wrap(errs.Generic, err, "discord api timed out")
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return errs.Wrap(errs.Generic, err, "cannot connect to discord api")
	}
	return errs.Wrap(errs.Generic, err, "discord request failed")
}

// apiMessage 从错误响应中取 message 或 error 字段
func apiMessage(resp *resty.Response, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(resp.String()); text != "" {
		return text
	}
	return fallback
}

func isAuthFailure(status int) bool {
	return status == 401 || status == 403
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
