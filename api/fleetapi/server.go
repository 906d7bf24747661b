package fleetapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"

	"github.com/kilianp07/mineguard/core/fleet"
	"github.com/kilianp07/mineguard/infra/logger"
)

// Options configures the HTTP surface around the router.
type Options struct {
	// StaticDir, when set, is served at / for the dashboard.
	StaticDir string
	Logger    logger.Logger
}

// Handler wraps the router with CORS, panic recovery and request logging.
func Handler(store fleet.Reader, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.New("api")
	}
	r := NewRouter(store)
	if opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}

	var h http.Handler = r
	h = handlers.CustomLoggingHandler(io.Discard, h, func(_ io.Writer, p handlers.LogFormatterParams) {
		log.Debugw("http request", map[string]any{
			"method":   p.Request.Method,
			"path":     p.URL.Path,
			"status":   p.StatusCode,
			"bytes":    p.Size,
			"duration": time.Since(p.TimeStamp).String(),
		})
	})
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{log}), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept"}),
	)(h)
	return h
}

type recoveryLogger struct{ log logger.Logger }

func (r recoveryLogger) Println(v ...any) { r.log.Errorf("%s", fmt.Sprint(v...)) }

// Serve runs the API on addr until ctx is canceled. A nil log falls back
// to the "api" component logger.
func Serve(ctx context.Context, addr string, h http.Handler, log logger.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return ServeListener(ctx, ln, h, log)
}

// ServeListener runs the API on ln until ctx is canceled, then shuts down
// gracefully.
func ServeListener(ctx context.Context, ln net.Listener, h http.Handler, log logger.Logger) error {
	if log == nil {
		log = logger.New("api")
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("api shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving api on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
