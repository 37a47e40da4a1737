// Package server exposes the snapshot service over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/proctree/internal/metrics"
	"github.com/Dicklesworthstone/proctree/internal/reader"
	"github.com/Dicklesworthstone/proctree/internal/wire"
)

var log = logrus.WithField("source", "server")

// Snapshotter is the part of the service the server depends on.
type Snapshotter interface {
	GetSnapshot(ctx context.Context) (wire.Document, error)
}

type apiFunc func(w http.ResponseWriter, r *http.Request) error

// statusError carries an HTTP status for errors raised by handlers.
type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string { return e.err.Error() }

// Server routes get_processes, metrics and health checks.
type Server struct {
	svc    Snapshotter
	router *mux.Router
}

func New(svc Snapshotter) *Server {
	s := &Server{svc: svc, router: mux.NewRouter()}
	s.router.Use(logRequests)
	for path, h := range map[string]apiFunc{
		"/get_processes": s.getProcesses,
		"/healthz":       healthz,
	} {
		s.router.Handle(path, makeHandler(path, h)).Methods(http.MethodGet)
	}
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.WithField("addr", ln.Addr().String()).Info("serving")

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func (s *Server) getProcesses(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = wire.FormatJSON
	}
	if format != wire.FormatJSON && format != wire.FormatYAML {
		metrics.Requests.WithValues("bad_request").Inc()
		return statusError{http.StatusBadRequest, errors.Errorf("unknown format %q", format)}
	}
	pretty, _ := strconv.ParseBool(q.Get("pretty"))

	doc, err := s.svc.GetSnapshot(r.Context())
	if err != nil {
		metrics.Requests.WithValues("unavailable").Inc()
		if reader.IsEnumerationError(err) {
			return statusError{http.StatusServiceUnavailable, err}
		}
		return err
	}
	b, err := wire.Marshal(doc, format, pretty)
	if err != nil {
		metrics.Requests.WithValues("error").Inc()
		return errors.Wrap(err, "encode snapshot")
	}

	metrics.Requests.WithValues("ok").Inc()
	w.Header().Set("Content-Type", wire.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(append(b, '\n'))
	return err
}

func healthz(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte("ok"))
	return err
}

func makeHandler(route string, h apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			log.WithError(err).WithField("route", route).Warn("request failed")
			writeError(w, err)
		}
	})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var se statusError
	if errors.As(err, &se) {
		code = se.code
	}
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]string{"error": err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(b, '\n'))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status,
			"elapsed": time.Since(start),
		}).Debug("request")
	})
}
