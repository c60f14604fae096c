// Package jobs 管理可取消的长时间操作，同名操作同一时间只运行一个
package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"confutils-worker/services/errs"
	"confutils-worker/services/logging"
)

// Info 正在运行的任务
type Info struct {
	Name    string    `json:"name"`
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
}

type job struct {
	info   Info
	cancel context.CancelFunc
}

// Manager 任务表
type Manager struct {
	mu      sync.Mutex
	running map[string]*job
}

// NewManager 创建任务表
func NewManager() *Manager {
	return &Manager{running: make(map[string]*job)}
}

// Run 以 name 启动 fn 并等待其返回；同名任务已在运行时拒绝
func (m *Manager) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	j := &job{
		info:   Info{Name: name, ID: uuid.NewString(), Started: time.Now()},
		cancel: cancel,
	}

	m.mu.Lock()
	if _, exists := m.running[name]; exists {
		m.mu.Unlock()
		return errs.Invalid("%s is already running", name)
	}
	m.running[name] = j
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.running[name] == j {
			delete(m.running, name)
		}
		m.mu.Unlock()
	}()

	logging.Context(ctx).Infow("job started", "job", name, "jobID", j.info.ID)
	err := fn(jobCtx)
	if err != nil && jobCtx.Err() != nil && (errors.Is(err, context.Canceled) || errs.Is(err, errs.CancellationRequested)) {
		err = errs.Cancelled(name)
	}
	logging.Context(ctx).Infow("job finished", "job", name, "jobID", j.info.ID,
		"elapsed", time.Since(j.info.Started).String(), "error", err)
	return err
}

// Cancel 取消同名任务，返回是否存在
func (m *Manager) Cancel(name string) bool {
	m.mu.Lock()
	j, ok := m.running[name]
	m.mu.Unlock()
	if ok {
		j.cancel()
	}
	return ok
}

// Running 按名称排序的运行中任务
func (m *Manager) Running() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, 0, len(m.running))
	for _, j := range m.running {
		out = append(out, j.info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Steps 依次执行 n 步，每步之前检查取消
func Steps(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return errs.Cancelled("operation")
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}
