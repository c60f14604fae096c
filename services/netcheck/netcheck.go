// Package netcheck 通过 TCP 连接公共 DNS 判断是否在线
package netcheck

import (
	"context"
	"net"
	"time"

	"confutils-worker/services/executor/powershell/config"
	"confutils-worker/services/logging"
)

// Prober 在线检测
type Prober struct {
	addresses []string
	timeout   time.Duration
	dialer    func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewProber 按配置创建检测器
func NewProber(cfg config.NetcheckConfig) *Prober {
	var d net.Dialer
	return &Prober{
		addresses: append([]string(nil), cfg.Addresses...),
		timeout:   time.Duration(cfg.TimeoutMillis) * time.Millisecond,
		dialer:    d.DialContext,
	}
}

// Online 依次连接各地址，任一成功即返回 true
func (p *Prober) Online(ctx context.Context) bool {
	for _, addr := range p.addresses {
		if ctx.Err() != nil {
			return false
		}
		dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
		conn, err := p.dialer(dialCtx, "tcp", addr)
		cancel()
		if err == nil {
			_ = conn.Close()
			return true
		}
		logging.Context(ctx).Debugw("online probe failed", "address", addr, "error", err)
	}
	return false
}
