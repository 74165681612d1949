// server serves the accounts page and pushes each page's element updates to it over
// a websocket. Every page gets its own views, chart renderer and ledger subscription.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"balancechart/ledger"
	"balancechart/models"
	"balancechart/server/chart_views"
	"balancechart/server/fastview"
	"balancechart/server/root_view"
)

type Options struct {
	Title      string
	EchartsURL string
	// Backend selects the chart renderer: "echarts" or "svg".
	Backend      string
	Presentation chart_views.Presentation
	// SVGWidth and SVGHeight size charts drawn by the svg backend and the snapshot endpoint.
	SVGWidth, SVGHeight int
	BatchRate           time.Duration
	Reporter            chart_views.ErrorReporter
}

type Server struct {
	addr   string
	book   *ledger.Book
	opts   Options
	page   *template.Template
	router *mux.Router
	diag   *Diagnostics
}

func NewServer(addr string, book *ledger.Book, opts Options) (*Server, error) {
	if book == nil {
		return nil, errors.New("server: no book")
	}
	if opts.Reporter == nil {
		opts.Reporter = chart_views.NewLogReporter()
	}

	srv := &Server{
		addr: addr,
		book: book,
		opts: opts,
		diag: Diag(),
	}
	page, err := srv.parsePage()
	if err != nil {
		return nil, err
	}
	srv.page = page

	router := mux.NewRouter()
	router.HandleFunc("/", srv.serveIndex).Methods(http.MethodGet)
	router.HandleFunc(root_view.WebsocketPath, srv.serveWebsocket)
	router.HandleFunc("/charts/{account:[A-Za-z0-9_-]+}.svg", srv.serveChartSVG).Methods(http.MethodGet)
	router.HandleFunc("/debug/vars", srv.serveDiagnostics).Methods(http.MethodGet)
	router.Use(logRequests)
	srv.router = router

	return srv, nil
}

// Handler returns the server's routes.
func (srv *Server) Handler() http.Handler {
	return srv.router
}

// Serve listens until ctx is done, then shuts down.
func (srv *Server) Serve(ctx context.Context) error {
	hs := &http.Server{
		Addr:    srv.addr,
		Handler: srv.router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	logrus.Infof("serving on http://%s", srv.addr)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func (srv *Server) newRenderer() chart_views.Renderer {
	var r chart_views.Renderer
	if srv.opts.Backend == "svg" {
		r = chart_views.NewSVGRenderer(srv.opts.Presentation, srv.opts.SVGWidth, srv.opts.SVGHeight)
	} else {
		r = chart_views.NewEchartsRenderer(srv.opts.Presentation)
	}
	return srv.diag.CountSessions(r)
}

// parsePage parses the page template once. The views only define templates here; the
// short-lived instance that parses them is stopped right after.
func (srv *Server) parsePage() (*template.Template, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rv, err := root_view.NewRootView(ctx, nil, nil, root_view.Options{
		Renderer:     chart_views.NewEchartsRenderer(srv.opts.Presentation),
		Presentation: srv.opts.Presentation,
	})
	if err != nil {
		return nil, err
	}

	t := template.New("index.html")
	name, err := rv.Parse(t)
	if err != nil {
		return nil, errors.Wrap(err, "parse page")
	}
	if _, err = t.Parse(`{{ template "` + name + `" . }}`); err != nil {
		return nil, errors.Wrap(err, "parse page")
	}
	return t, nil
}

func (srv *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := srv.page.Execute(&buf, root_view.PageData{
		Title:      srv.opts.Title,
		EchartsURL: srv.echartsURL(),
	})
	if err != nil {
		logrus.WithError(err).Error("render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (srv *Server) echartsURL() string {
	if srv.opts.Backend == "svg" {
		return ""
	}
	return srv.opts.EchartsURL
}

// serveWebsocket runs one page until it disconnects. Leaving the page releases its
// views and every chart they drew.
func (srv *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(w, r)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade")
		return
	}
	defer srv.diag.connected()()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rv, err := root_view.NewRootView(ctx, srv.book.Subscribe(ctx.Done()), cli.Messages(), root_view.Options{
		Renderer:     srv.newRenderer(),
		Reporter:     srv.diag.CountReports(srv.opts.Reporter),
		Presentation: srv.opts.Presentation,
		BatchRate:    srv.opts.BatchRate,
	})
	if err != nil {
		logrus.WithError(err).Error("build page views")
		return
	}

	logrus.WithField("remote", r.RemoteAddr).Debug("page connected")
	if err := cli.Sync(rv.Updates()); err != nil {
		logrus.WithError(err).WithField("remote", r.RemoteAddr).Warn("page connection failed")
		return
	}
	logrus.WithField("remote", r.RemoteAddr).Debug("page disconnected")
}

// serveChartSVG draws the current chart of one account as a standalone svg.
func (srv *Server) serveChartSVG(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["account"]
	var chart *chart_views.AccountChart
	for _, acct := range chart_views.Convert(srv.book.Snapshot()).Accounts {
		if acct.AccountID == id {
			acct := acct
			chart = &acct
			break
		}
	}
	if chart == nil {
		http.Error(w, "no such account", http.StatusNotFound)
		return
	}

	ds, err := models.Decode(chart.Payload)
	if err != nil {
		logrus.WithError(err).WithField("account", id).Error("chart payload")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := chart_views.RenderSVG(&buf, ds, srv.opts.Presentation, srv.opts.SVGWidth, srv.opts.SVGHeight); err != nil {
		http.Error(w, "chart cannot be drawn: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

func (srv *Server) serveDiagnostics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(srv.diag.Snapshot()); err != nil {
		logrus.WithError(err).Warn("write diagnostics")
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"elapsed": time.Since(start).String(),
		}).Debug("request")
	})
}
