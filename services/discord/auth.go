package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"confutils-worker/services/errs"
	"confutils-worker/services/logging"
	"confutils-worker/services/security"
)

// Auth 可用的 Authorization 头及对应的用户
type Auth struct {
	Header string `json:"header"`
	UserID string `json:"userId,omitempty"`
}

type me struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Candidates 由原始令牌生成按顺序尝试的 Authorization 值
func Candidates(token string) []string {
	trimmed := strings.TrimSpace(token)
	if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "bot ") {
		bare := strings.TrimSpace(trimmed[4:])
		out := []string{"Bot " + bare}
		if bare != "" {
			out = append(out, bare)
		}
		return out
	}
	return []string{trimmed, "Bot " + trimmed}
}

// ResolveAuth 依次尝试候选值；401/403 换下一个，其余失败立即返回
func (c *Client) ResolveAuth(ctx context.Context, token string) (Auth, error) {
	if strings.TrimSpace(token) == "" {
		return Auth{}, errs.Invalid("token is empty")
	}
	for _, candidate := range Candidates(token) {
		resp, err := c.get(ctx, mePath, candidate)
		if err != nil {
			return Auth{}, err
		}
		status := resp.StatusCode()
		if isSuccess(status) {
			var user me
			if err = json.Unmarshal(resp.Body(), &user); err != nil {
				return Auth{}, errs.Wrap(errs.Generic, err, "cannot parse discord response")
			}
			return Auth{Header: candidate, UserID: user.ID}, nil
		}
		if isAuthFailure(status) {
			logging.Context(ctx).Debugw("discord auth candidate rejected", "token", MaskToken(candidate), "status", status)
			continue
		}
		return Auth{}, errs.Failed("cannot fetch user (status %d): %s", status, apiMessage(resp, "unknown error"))
	}
	return Auth{}, errs.New(errs.AuthExhausted, "token is invalid or expired")
}

// CheckToken 校验令牌并返回用户名与 ID
func (c *Client) CheckToken(ctx context.Context, token string) (string, error) {
	user, _, err := c.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	name, id := user.Username, user.ID
	if name == "" {
		name = "Unknown"
	}
	if id == "" {
		id = "Unknown"
	}
	return "token valid - user: " + name + " (" + id + ")", nil
}

// TokenInfo 返回 /users/@me 的原始 JSON
func (c *Client) TokenInfo(ctx context.Context, token string) (string, error) {
	_, raw, err := c.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err = json.Compact(&buf, raw); err != nil {
		return "", errs.Wrap(errs.Generic, err, "cannot parse discord response")
	}
	return buf.String(), nil
}

func (c *Client) lookup(ctx context.Context, token string) (me, []byte, error) {
	valid, err := security.ValidateDiscordToken(token)
	if err != nil {
		return me{}, nil, err
	}
	resp, err := c.get(ctx, mePath, valid)
	if err != nil {
		return me{}, nil, err
	}
	status := resp.StatusCode()
	if isAuthFailure(status) {
		return me{}, nil, errs.New(errs.AuthExhausted, "token is invalid or expired: %s", apiMessage(resp, "unauthorized"))
	}
	if !isSuccess(status) {
		return me{}, nil, errs.Failed("discord api error (status %d): %s", status, apiMessage(resp, "cannot fetch token info"))
	}
	var user me
	if err = json.Unmarshal(resp.Body(), &user); err != nil {
		return me{}, nil, errs.Wrap(errs.Generic, err, "cannot parse discord response")
	}
	return user, resp.Body(), nil
}

// MaskToken 日志用：保留前 6 位与后 4 位
func MaskToken(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:6] + "..." + token[len(token)-4:]
}
