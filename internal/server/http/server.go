package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iamnno/IES/internal/runtime"
	logpkg "github.com/iamnno/IES/pkg/log"
)

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger logpkg.Logger
}

func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	s := &Server{rt: rt, logger: logger.With(logpkg.Component("http"))}

	r := mux.NewRouter()
	r.HandleFunc("/v1/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/telemetry", s.handleIngest).Methods(http.MethodPost)
	r.HandleFunc("/v1/telemetry/records", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/v1/telemetry/records/purge", s.handlePurge).Methods(http.MethodPost)
	r.HandleFunc("/v1/telemetry/records/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/v1/telemetry/records/{id}", s.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/v1/telemetry/records/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/v1/telemetry/{userID}/subscribe", s.handleSubscribeSSE).Methods(http.MethodGet)

	s.srv = &http.Server{Handler: cors(r)}
	return s
}

// Handler exposes the routed handler for in-process tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
