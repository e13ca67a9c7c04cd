// Package api serves a constructed kernel over HTTP.
//
// Routes:
//
//	GET  /healthz                             liveness and build info
//	GET  /v1/kernel                           parameters, extent and table shape
//	POST /v1/kernel/evaluate                  K2 for {x, y, r, v}
//	GET  /v1/kernel/table/{v}/{r}/{dx}/{dy}/{dz}  one lookup table cell
//
// Every response carries an X-Request-ID header, echoed from the request or
// generated.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/buildinfo"
	"github.com/matzehuels/sekernel/pkg/enhancement"
	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/observability"
)

// RequestIDHeader carries the request ID.
const RequestIDHeader = "X-Request-ID"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 16

// Server exposes one kernel.
type Server struct {
	kernel *enhancement.Kernel
	logger *log.Logger
	router chi.Router
}

// NewServer builds the router for k.
func NewServer(k *enhancement.Kernel, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{kernel: k, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/kernel", func(r chi.Router) {
		r.Get("/", s.handleKernel)
		r.Post("/evaluate", s.handleEvaluate)
		r.Get("/table/{v}/{r}/{dx}/{dy}/{dz}", s.handleTableCell)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// =============================================================================
// Responses
// =============================================================================

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// KernelResponse is returned by GET /v1/kernel.
type KernelResponse struct {
	Params       kernel.Params `json:"params"`
	Extent       int           `json:"extent"`
	Shape        []int         `json:"shape"`
	Orientations int           `json:"orientations"`
	Sphere       string        `json:"sphere,omitempty"`
	TestMode     bool          `json:"test_mode"`
	CacheHit     bool          `json:"cache_hit"`
}

// EvaluateRequest is the body of POST /v1/kernel/evaluate.
type EvaluateRequest struct {
	X [3]float64 `json:"x"`
	Y [3]float64 `json:"y"`
	R [3]float64 `json:"r"`
	V [3]float64 `json:"v"`
}

// ValueResponse carries a single kernel value.
type ValueResponse struct {
	Value float64 `json:"value"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleKernel(w http.ResponseWriter, r *http.Request) {
	k := s.kernel
	writeJSON(w, http.StatusOK, KernelResponse{
		Params:       k.Params(),
		Extent:       k.Extent().N,
		Shape:        k.LookupTable().Shape().Dims(),
		Orientations: k.Sphere().Len(),
		Sphere:       k.Sphere().Name,
		TestMode:     k.TestMode(),
		CacheHit:     k.CacheHit(),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	orient := func(name string, a [3]float64) (r3.Vec, error) {
		v := vec(a)
		if r3.Norm(v) == 0 {
			return r3.Vec{}, errors.New(errors.ErrCodeInvalidOrientations, "%s must be a non-zero orientation", name)
		}
		return r3.Unit(v), nil
	}
	rv, err := orient("r", req.R)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vv, err := orient("v", req.V)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ValueResponse{Value: s.kernel.Evaluate(vec(req.X), vec(req.Y), rv, vv)})
}

func (s *Server) handleTableCell(w http.ResponseWriter, r *http.Request) {
	var idx [5]int
	for i, name := range [5]string{"v", "r", "dx", "dy", "dz"} {
		n, err := strconv.Atoi(chi.URLParam(r, name))
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer", name))
			return
		}
		idx[i] = n
	}

	t := s.kernel.LookupTable()
	shape, hn := t.Shape(), t.HalfWidth()
	if idx[0] < 0 || idx[0] >= shape.NumV || idx[1] < 0 || idx[1] >= shape.NumR {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "orientation index out of range for table %s", shape))
		return
	}
	for _, d := range idx[2:] {
		if d < -hn || d > hn {
			s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "offset %d outside [%d,%d]", d, -hn, hn))
			return
		}
	}

	writeJSON(w, http.StatusOK, ValueResponse{Value: t.At(idx[0], idx[1], idx[2], idx[3], idx[4])})
}

// =============================================================================
// Helpers
// =============================================================================

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	writeJSON(w, status, ErrorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

// requestID propagates or assigns X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"id", w.Header().Get(RequestIDHeader),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

// routePattern returns the matched chi route, or the raw path before routing.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
