// Package obslog wraps go.uber.org/zap to emit the gateway's structured
// logs: one AccessLog record per inbound HTTP request, plus debug-level
// pipeline logs in the style of the teacher server's s.log(string, ...any)
// callback (server.go, opts.go's logFunc).
package obslog

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Logger is the gateway's structured logger. The zero value is not usable;
// construct one with New or NewNop.
type Logger struct {
	z *zap.Logger
}

// New builds a production Logger (JSON encoding) at the given level
// ("debug", "info", "warn", "error", ...). An empty or unrecognized level
// falls back to zap's own default of info, matching zap.NewProductionConfig.
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// NewNop returns a Logger that discards everything, for tests and for
// callers that have not configured logging.
func NewNop() *Logger { return &Logger{z: zap.NewNop()} }

// Sync flushes any buffered log entries. Callers should defer Sync in main.
func (l *Logger) Sync() error { return l.z.Sync() }

// Debugf logs a formatted debug-level message, mirroring the teacher's
// logFunc(format string, args ...any) signature.
func (l *Logger) Debugf(format string, args ...any) {
	l.z.Sugar().Debugf(format, args...)
}

// RPCInfo summarizes the parsed JSON-RPC payload for one AccessLog line,
// adapted from the original gateway's RpcAccessLog::Single/Batch variants.
type RPCInfo struct {
	Batch  bool
	ID     json.RawMessage // Single only
	Method string          // Single only, "" if unresolved
	Count  int             // Batch only
}

// AccessLog emits one structured entry per inbound HTTP request, combining
// the transport-level fields (user agent, method, path) with the RPC-level
// summary once the body has been parsed. rpc may be nil if the request
// never reached parsing (e.g. an empty body, or a non-POST route).
func (l *Logger) AccessLog(r *http.Request, rpc *RPCInfo) {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	fields := []zap.Field{
		zap.String("user-agent", ua),
		zap.String("http-method", r.Method),
		zap.String("http-path", r.URL.Path),
	}
	switch {
	case rpc == nil:
		fields = append(fields, zap.String("rpc-type", "unknown"))
	case rpc.Batch:
		fields = append(fields,
			zap.String("rpc-type", "batch"),
			zap.Int("rpc-count", rpc.Count),
		)
	default:
		method := rpc.Method
		if method == "" {
			method = "unknown"
		}
		fields = append(fields,
			zap.String("rpc-type", "single"),
			zap.String("rpc-id", string(rpc.ID)),
			zap.String("rpc-method", method),
		)
	}
	l.z.Info("request", fields...)
}
