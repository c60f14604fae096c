// Package dispatch 把 GUI 的调用分发给已注册的操作
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor"
	"confutils-worker/services/logging"
)

const (
	defaultTimeoutMinutes = 10
	maxTimeoutMinutes     = 60
)

type Server struct {
	factory executor.Factory
}

// NewServer 创建服务器
func NewServer(factory executor.Factory) *Server {
	return &Server{factory: factory}
}

func (s *Server) RegisterService(serviceRegistrar grpc.ServiceRegistrar) {
	serviceRegistrar.RegisterService(&ServiceDesc, s)
}

func (s *Server) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	name := fields["name"].GetStringValue()
	if name == "" {
		return nil, errs.ToStatus(errs.Invalid("missing command name"))
	}

	timeout := s.getTimeout(fields["timeoutSeconds"].GetNumberValue())
	if timeout > maxTimeoutMinutes*time.Minute {
		timeout = maxTimeoutMinutes * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	log := logging.Context(ctx)

	// 使用工厂创建操作
	cmd, err := s.factory.CreateExecutor(name)
	if err != nil {
		log.Warnw("unsupported command", "command", name)
		return nil, errs.ToStatus(err)
	}

	var args executor.Args
	if v, ok := fields["args"]; ok && v.GetStructValue() != nil {
		args = v.GetStructValue().AsMap()
	}
	if args == nil {
		args = executor.Args{}
	}

	started := time.Now()
	out, err := cmd.Execute(ctx, args)
	if err != nil {
		log.Warnw("command failed", "command", name, "kind", errs.KindOf(err).String(),
			"elapsed", time.Since(started).String(), "error", err)
		return nil, errs.ToStatus(err)
	}
	log.Infow("command finished", "command", name, "elapsed", time.Since(started).String())

	return structpb.NewStruct(map[string]any{"output": out})
}

func (s *Server) List(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	names := s.factory.SupportedMethods()
	values := make([]any, 0, len(names))
	for _, n := range names {
		values = append(values, n)
	}
	return structpb.NewStruct(map[string]any{"commands": values})
}

func (s *Server) getTimeout(timeoutSec float64) time.Duration {
	if timeoutSec <= 0 {
		return defaultTimeoutMinutes * time.Minute
	}
	return time.Duration(timeoutSec * float64(time.Second))
}
