package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 定义 Context 中的 Key
const TraceIDKey = "trace_id"

// JobIDKey 队列任务 ID
const JobIDKey = "job_id"

type ctxKey string

// ContextHandler 包装器，从 ctx 中提取 trace_id / job_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID := TraceID(ctx); traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if jobID, ok := ctx.Value(ctxKey(JobIDKey)).(string); ok {
			r.AddAttrs(log.String(JobIDKey, jobID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

// WithTraceID 在 ctx 上挂载 trace_id，gin 的 c.Set 与 context.WithValue 两种写法都能被读取
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithJobID 任务处理时挂载 job_id，任务日志沿用任务 ID 作为 trace_id
func WithJobID(ctx context.Context, jobID string) context.Context {
	ctx = context.WithValue(ctx, ctxKey(JobIDKey), jobID)
	return WithTraceID(ctx, jobID)
}

func TraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}
