package clientapp

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phillip-england/staffdesk/internal/employees"
	"github.com/phillip-england/staffdesk/internal/middleware"
)

const shutdownTimeout = 5 * time.Second

// Route names and their screen titles.
const (
	RouteHome           = "Home"
	RouteEmployeeList   = "EmployeeList"
	RouteAddEmployee    = "AddEmployee"
	RouteDepartmentList = "DepartmentList"
)

var routeTitles = map[string]string{
	RouteHome:           "Employee Management",
	RouteEmployeeList:   "Employees",
	RouteAddEmployee:    "Add Employee",
	RouteDepartmentList: "Departments",
}

var routePaths = map[string]string{
	RouteHome:           "/",
	RouteEmployeeList:   "/employees",
	RouteAddEmployee:    "/employees/new",
	RouteDepartmentList: "/departments",
}

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

//go:embed templates/layout.html templates/home.html templates/employees.html templates/departments.html templates/employee_form.html assets/app.css
var templatesFS embed.FS

type server struct {
	employees       *employees.Service
	logger          *zap.Logger
	homeTmpl        *template.Template
	employeesTmpl   *template.Template
	departmentsTmpl *template.Template
	formTmpl        *template.Template
}

// NewHandler returns the full web UI: routes, security headers, request
// logging and panic recovery.
func NewHandler(svc *employees.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{
		employees:       svc,
		logger:          logger,
		homeTmpl:        parsePage("templates/home.html"),
		employeesTmpl:   parsePage("templates/employees.html"),
		departmentsTmpl: parsePage("templates/departments.html"),
		formTmpl:        parsePage("templates/employee_form.html"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.homePage)
	mux.HandleFunc("GET /employees", s.employeeListPage)
	mux.HandleFunc("GET /employees/new", s.newEmployeePage)
	mux.HandleFunc("POST /employees/new", s.saveEmployee)
	mux.HandleFunc("GET /employees/{id}/edit", s.editEmployeePage)
	mux.HandleFunc("POST /employees/{id}/edit", s.saveEmployee)
	mux.HandleFunc("GET /employees/export.xlsx", s.exportEmployees)
	mux.HandleFunc("POST /employees/import", s.importEmployees)
	mux.HandleFunc("GET /departments", s.departmentListPage)
	mux.HandleFunc("GET /assets/app.css", s.appCSSFile)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self'",
		"img-src 'self' data:",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		mux,
		middleware.Recover(logger),
		middleware.RequestLog(logger),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
	)
}

// Run serves handler until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg Config, handler http.Handler, logger *zap.Logger) error {
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("client listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func parsePage(page string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", page))
}

var templateFuncs = template.FuncMap{
	"routePath": func(name string) string { return routePaths[name] },
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	css, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(css)
}

func (s *server) render(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("template render failed", zap.String("title", data.Title), zap.Error(err))
		http.Error(w, "template render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
