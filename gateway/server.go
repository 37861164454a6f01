package gateway

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chainbourne/chainrelay/code"
	"github.com/chainbourne/chainrelay/rpc"
)

// Server is the HTTP front door (spec.md §4.F): it implements http.Handler
// directly over net/http, the way the teacher's jhttp.Bridge does, since
// the routing table here is exactly two fixed routes plus a catch-all — no
// third-party router earns its keep for that.
type Server struct {
	cfg *Config
}

// New returns a Server backed by cfg. New panics if cfg is incompletely
// populated (Sender, Table, or Registry is nil), since those are not
// optional the way logging and metrics are.
func New(cfg *Config) *Server {
	if cfg.Sender == nil || cfg.Table == nil || cfg.Registry == nil {
		panic("gateway: Config.Sender, Table, and Registry are required")
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 30 * time.Second
	}
	return &Server{cfg: cfg}
}

// ServeHTTP implements http.Handler, dispatching on method and path exactly
// as the original gateway's Service::call match statement does.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/":
		s.serveRPC(w, r)
	case r.Method == http.MethodOptions && r.URL.Path == "/":
		s.cfg.logger().AccessLog(r, nil)
		handlePreflight(w, s.cfg.AllowOrigin)
		s.cfg.Metrics.ObserveRequest("options", "200")
	default:
		s.cfg.logger().AccessLog(r, nil)
		applyCORSHeaders(w, s.cfg.AllowOrigin)
		w.WriteHeader(http.StatusNotFound)
		s.cfg.Metrics.ObserveRequest("unmatched", "404")
	}
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	var installed []string
	defer s.recoverRPC(w, &installed)

	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		s.cfg.logger().AccessLog(r, nil)
		applyCORSHeaders(w, s.cfg.AllowOrigin)
		w.WriteHeader(http.StatusBadRequest)
		s.cfg.Metrics.ObserveRequest("rpc", "400")
		return
	}
	if len(raw) == 0 {
		s.cfg.logger().AccessLog(r, nil)
		applyCORSHeaders(w, s.cfg.AllowOrigin)
		w.WriteHeader(http.StatusBadRequest)
		s.cfg.Metrics.ObserveRequest("rpc", "400")
		return
	}

	parsed, err := rpc.Parse(raw)
	if err != nil {
		s.cfg.logger().AccessLog(r, nil)
		s.writeParseError(w, err)
		return
	}

	s.cfg.logger().AccessLog(r, accessLogInfo(parsed))

	start := time.Now()
	reply, hasBody, err := process(r.Context(), s.cfg, parsed, newCorrelationID, func(id string) {
		installed = append(installed, id)
	})
	s.cfg.Metrics.ObservePublishSeconds(time.Since(start).Seconds())
	if err != nil {
		applyCORSHeaders(w, s.cfg.AllowOrigin)
		w.WriteHeader(http.StatusInternalServerError)
		s.cfg.Metrics.ObserveRequest("rpc", "500")
		return
	}

	applyCORSHeaders(w, s.cfg.AllowOrigin)
	if !hasBody {
		w.WriteHeader(http.StatusOK)
		s.cfg.Metrics.ObserveRequest("rpc", "200")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(reply)
	s.cfg.Metrics.ObserveRequest("rpc", "200")
}

// recoverRPC is the per-request panic boundary (spec.md §7): a panic
// anywhere in serveRPC, including inside process, is converted into a
// generic internal-error envelope at HTTP 500 rather than reaching net/http's
// default panic handler (which would just log and reset the connection).
// Any correlation slots this request had already installed are dropped from
// the table so a crashed request never leaves an orphaned slot behind,
// mirroring the teacher's panicToError boundary around callback handlers.
func (s *Server) recoverRPC(w http.ResponseWriter, installed *[]string) {
	p := recover()
	if p == nil {
		return
	}
	for _, id := range *installed {
		s.cfg.Table.Drop(id)
	}
	s.cfg.Metrics.ObserveRequest("rpc", "500")

	out := rpc.NewError(nil, rpc.Errorf(code.InternalError, "internal error"))
	reply, _, err := rpc.Assemble(false, []*rpc.Output{out})
	applyCORSHeaders(w, s.cfg.AllowOrigin)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(reply)
}

// writeParseError handles the "body is not even intact JSON" failure mode
// from rpc.Parse, rendering it as a JSON-RPC -32700 envelope rather than an
// HTTP error, per the boundary documented in DESIGN.md.
func (s *Server) writeParseError(w http.ResponseWriter, parseErr error) {
	out := rpc.NewError(nil, rpc.Errorf(code.ParseError, "%v", parseErr))
	reply, _, err := rpc.Assemble(false, []*rpc.Output{out})
	applyCORSHeaders(w, s.cfg.AllowOrigin)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(reply)
	s.cfg.Metrics.ObserveRequest("rpc", "200")
}

func newCorrelationID() string { return uuid.New().String() }
