package executor

import (
	"fmt"
	"sort"
	"sync"

	"confutils-worker/services/errs"
)

// registry 按操作名保存创建函数
type registry struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// NewFactory 创建空的操作注册表
func NewFactory() Factory {
	return &registry{creators: make(map[string]Creator)}
}

func (r *registry) lookup(name string) (Creator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.creators[name]
	return c, ok
}

// CreateExecutor 未注册的操作返回 InvalidInput
func (r *registry) CreateExecutor(name string) (Command, error) {
	creator, ok := r.lookup(name)
	if !ok {
		return nil, errs.Invalid("unsupported command: %s", name)
	}
	return creator(), nil
}

func (r *registry) SupportedMethods() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.creators))
	for name := range r.creators {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// RegisterExecutor 同名重复注册属于编程错误，直接 panic
func (r *registry) RegisterExecutor(name string, creator Creator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.creators[name]; dup {
		panic(fmt.Sprintf("command %s is already registered", name))
	}
	r.creators[name] = creator
}

func (r *registry) IsSupported(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

var defaultFactory = NewFactory()

// DefaultFactory 进程级注册表，bootstrap 在启动时装入全部操作
func DefaultFactory() Factory {
	return defaultFactory
}
