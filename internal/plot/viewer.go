package plot

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Page is what the viewer shows
type Page struct {
	Title string
	PNG   []byte
}

type ViewerOptions struct {
	Addr string
	// Open is called with the page URL once the server listens; nil skips it
	Open func(url string) error
	// Ready is called with the page URL before Open
	Ready func(url string)
	// Metrics, when set, is exposed on /metrics
	Metrics prometheus.Gatherer
}

// Viewer serves a plot on a local HTTP page until the page is closed
type Viewer struct {
	opts ViewerOptions
}

func NewViewer(opts ViewerOptions) *Viewer {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	return &Viewer{opts: opts}
}

var pageTemplate = template.Must(template.New("plot").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; background: #fafafa; text-align: center; }
img { max-width: 100%; height: auto; }
button { margin: 12px; padding: 6px 18px; }
</style>
</head>
<body>
<img src="/plot.png" alt="{{.Title}}">
<div><button id="close">Close</button></div>
<script>
function closeViewer() { navigator.sendBeacon("/close"); }
document.getElementById("close").addEventListener("click", function () { closeViewer(); window.close(); });
window.addEventListener("pagehide", closeViewer);
</script>
</body>
</html>
`))

// Show serves page and blocks until the page is closed, ctx is done or the server fails
func (v *Viewer) Show(ctx context.Context, page Page) error {
	ln, err := net.Listen("tcp", v.opts.Addr)
	if err != nil {
		return fmt.Errorf("starting plot viewer: %w", err)
	}

	closed := make(chan struct{})
	var closeOnce sync.Once

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, page); err != nil {
			log.Error().Err(err).Msg("Rendering viewer page")
		}
	}).Methods(http.MethodGet)
	router.HandleFunc("/plot.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(page.PNG)))
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(page.PNG)
	}).Methods(http.MethodGet)
	router.HandleFunc("/close", func(w http.ResponseWriter, r *http.Request) {
		closeOnce.Do(func() { close(closed) })
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)
	if v.opts.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(v.opts.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	handler := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(
		handlers.CustomLoggingHandler(io.Discard, router, logRequest),
	)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	url := "http://" + ln.Addr().String() + "/"
	log.Info().Str("url", url).Str("title", page.Title).Msg("Plot viewer started")
	if v.opts.Ready != nil {
		v.opts.Ready(url)
	}
	if v.opts.Open != nil {
		if err := v.opts.Open(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Could not open browser")
		}
	}

	var result error
	select {
	case <-ctx.Done():
	case <-closed:
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("plot viewer: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Plot viewer shutdown")
	}
	log.Info().Msg("Plot viewer closed")
	return result
}

// OpenBrowser opens url in the default browser, detached from the terminal
func OpenBrowser(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

func logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	log.Debug().
		Str("method", params.Request.Method).
		Str("path", params.URL.Path).
		Int("status", params.StatusCode).
		Int("size", params.Size).
		Msg("Viewer request")
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Msg(fmt.Sprint(v...))
}
