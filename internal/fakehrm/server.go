// Package fakehrm is an in-process stand-in for the recruitment module of the
// HR application. It renders the same markup contract the page helpers rely
// on (names, labels, classes, dropdown and dialog behaviour) so the browser
// suite can run offline and in CI.
package fakehrm

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

//go:embed templates static
var assets embed.FS

// Application paths, matching the real product.
const (
	LoginPath          = "/web/index.php/auth/login"
	validatePath       = "/web/index.php/auth/validate"
	logoutPath         = "/web/index.php/auth/logout"
	DashboardPath      = "/web/index.php/dashboard/index"
	CandidatesPath     = "/web/index.php/recruitment/viewCandidates"
	addCandidatePath   = "/web/index.php/recruitment/addCandidate"
	deletePath         = "/web/index.php/recruitment/deleteCandidate"
	VacanciesPath      = "/web/index.php/recruitment/viewJobVacancy"
	addVacancyPath     = "/web/index.php/recruitment/addJobVacancy"
	sessionCookie      = "orangehrm"
	defaultPageSize    = 5
	maxAttachmentBytes = 1 << 20
)

type Credentials struct {
	Username string
	Password string
}

type Options struct {
	Credentials Credentials
	// PageSize is the number of candidate rows per page.
	PageSize int
	Store    *Store
}

func (o Options) withDefaults() Options {
	if o.Credentials.Username == "" {
		o.Credentials = Credentials{Username: "Admin", Password: "admin123"}
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.Store == nil {
		o.Store = NewStore()
	}
	return o
}

// Server is the stub application.
type Server struct {
	opts   Options
	store  *Store
	tpl    *pongo2.TemplateSet
	engine *gin.Engine
}

func New(opts Options) (*Server, error) {
	opts = opts.withDefaults()

	templates, err := fs.Sub(assets, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	loader, err := pongo2.NewHttpFileSystemLoader(http.FS(templates), "")
	if err != nil {
		return nil, fmt.Errorf("failed to create template loader: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	s := &Server{
		opts:  opts,
		store: opts.Store,
		tpl:   pongo2.NewSet("fakehrm", loader),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = maxAttachmentBytes
	r.StaticFS("/static", http.FS(static))
	s.routes(r)
	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Store() *Store { return s.store }

func (s *Server) routes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, LoginPath) })
	r.GET(LoginPath, s.loginPage)
	r.POST(validatePath, s.login)
	r.GET(logoutPath, s.logout)

	app := r.Group("/web/index.php", s.requireSession)
	app.GET("/dashboard/index", s.dashboard)
	app.GET("/recruitment/viewCandidates", s.candidates)
	app.GET("/recruitment/addCandidate", s.newCandidate)
	app.POST("/recruitment/addCandidate", s.createCandidate)
	app.GET("/recruitment/addCandidate/:id", s.candidateProfile)
	app.POST("/recruitment/deleteCandidate/:id", s.deleteCandidate)
	app.GET("/recruitment/viewJobVacancy", s.vacancies)
	app.GET("/recruitment/addJobVacancy", s.newVacancy)
	app.POST("/recruitment/addJobVacancy", s.createVacancy)
	app.GET("/recruitment/addJobVacancy/:id", s.editVacancy)
	app.POST("/recruitment/addJobVacancy/:id", s.updateVacancy)
	app.POST("/recruitment/addJobVacancy/:id/attachments", s.uploadAttachment)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().Str("method", c.Request.Method).Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).Dur("elapsed", time.Since(start)).Msg("fakehrm request")
	}
}

func (s *Server) requireSession(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil {
		if user, ok := s.store.Session(token); ok {
			c.Set("user", user)
			c.Next()
			return
		}
	}
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}

// render executes a template with the shell context every page shares.
func (s *Server) render(c *gin.Context, code int, name string, data pongo2.Context) {
	tmpl, err := s.tpl.FromFile(name)
	if err != nil {
		c.String(http.StatusInternalServerError, "Template not found: %s", name)
		return
	}
	ctx := pongo2.Context{
		"user":  c.GetString("user"),
		"toast": toastMessages[c.Query("toast")],
		"paths": paths,
	}
	ctx.Update(data)
	c.Status(code)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteWriter(ctx, c.Writer); err != nil {
		log.Error().Err(err).Str("template", name).Msg("template execution failed")
	}
}

var paths = map[string]string{
	"login":         LoginPath,
	"validate":      validatePath,
	"logout":        logoutPath,
	"dashboard":     DashboardPath,
	"candidates":    CandidatesPath,
	"add_candidate": addCandidatePath,
	"delete":        deletePath,
	"vacancies":     VacanciesPath,
	"add_vacancy":   addVacancyPath,
}

var toastMessages = map[string]string{
	"saved":   "Successfully Saved",
	"updated": "Successfully Updated",
	"deleted": "Successfully Deleted",
}

// Running is a started stub server.
type Running struct {
	URL  string
	srv  *http.Server
	errc chan error
}

// Start serves the stub on addr ("127.0.0.1:0" picks a free port) until ctx
// ends or Close is called.
func Start(ctx context.Context, addr string, opts Options) (*Running, error) {
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	run := &Running{
		URL:  "http://" + ln.Addr().String(),
		srv:  &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second},
		errc: make(chan error, 1),
	}
	go func() {
		err := run.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		run.errc <- err
	}()
	context.AfterFunc(ctx, func() { run.Close() })
	log.Info().Str("url", run.URL).Msg("fakehrm listening")
	return run, nil
}

// Close shuts the server down, waiting up to five seconds for requests in
// flight.
func (r *Running) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.srv.Shutdown(ctx)
}

// Wait blocks until the server stops and returns its serve error.
func (r *Running) Wait() error { return <-r.errc }
