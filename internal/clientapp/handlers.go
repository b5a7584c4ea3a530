package clientapp

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/phillip-england/staffdesk/internal/employees"
	"github.com/phillip-england/staffdesk/internal/roster"
	"github.com/phillip-england/staffdesk/internal/security"
)

const maxUploadBytes = 20 << 20

type pageData struct {
	Title   string
	Error   string
	Message string
	Search  string
	CSRF    string
	Back    string

	// BackHere is the current screen, passed to the form so a save returns here.
	BackHere    string
	Employees   []employeeRow
	Departments []departmentView
	Form        formView
}

type employeeRow struct {
	Name       string
	Department string
	EditURL    string
}

type departmentView struct {
	Name       string
	CountLabel string
	Employees  []employees.Employee
}

type formView struct {
	Action     string
	Editing    bool
	Name       string
	Department string
	Position   string
	Email      string
	Phone      string
}

func (f formView) SubmitLabel() string {
	if f.Editing {
		return "Update Employee"
	}
	return "Add Employee"
}

func (s *server) homePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.homeTmpl, http.StatusOK, pageData{Title: routeTitles[RouteHome], BackHere: "/"})
}

func (s *server) employeeListPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := strings.TrimSpace(query.Get("q"))
	backHere := listURL(routePaths[RouteEmployeeList], search)

	list, err := s.employees.ListByName(r.Context())
	if err != nil {
		s.logger.Error("load employees failed", zap.String("screen", RouteEmployeeList), zap.Error(err))
	}

	rows := make([]employeeRow, 0, len(list))
	for _, e := range employees.Filter(list, search) {
		rows = append(rows, employeeRow{
			Name:       e.Name,
			Department: e.Department,
			EditURL:    editURL(e.ID, backHere),
		})
	}

	token, err := security.EnsureCSRFCookie(w, r)
	if err != nil {
		s.logger.Error("issue csrf token failed", zap.Error(err))
	}

	s.render(w, s.employeesTmpl, http.StatusOK, pageData{
		Title:     routeTitles[RouteEmployeeList],
		Search:    search,
		Error:     query.Get("error"),
		Message:   query.Get("message"),
		CSRF:      token,
		BackHere:  backHere,
		Employees: rows,
	})
}

func (s *server) departmentListPage(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	list, err := s.employees.ListByDepartment(r.Context())
	if err != nil {
		s.logger.Error("load employees failed", zap.String("screen", RouteDepartmentList), zap.Error(err))
	}

	printer := message.NewPrinter(language.English)
	groups := employees.FilterGroups(employees.GroupByDepartment(list), search)
	views := make([]departmentView, 0, len(groups))
	for _, g := range groups {
		views = append(views, departmentView{
			Name:       g.Department,
			CountLabel: printer.Sprintf("%d employees", g.Count()),
			Employees:  g.Employees,
		})
	}

	s.render(w, s.departmentsTmpl, http.StatusOK, pageData{
		Title:       routeTitles[RouteDepartmentList],
		Search:      search,
		BackHere:    listURL(routePaths[RouteDepartmentList], search),
		Departments: views,
	})
}

func (s *server) newEmployeePage(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, formView{Action: routePaths[RouteAddEmployee]}, safeBack(r.URL.Query().Get("back")), "")
}

func (s *server) editEmployeePage(w http.ResponseWriter, r *http.Request) {
	id := employees.ID(r.PathValue("id"))
	back := safeBack(r.URL.Query().Get("back"))

	employee, err := s.employees.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("load employee failed", zap.String("id", id.String()), zap.Error(err))
		http.Redirect(w, r, routePaths[RouteEmployeeList], http.StatusFound)
		return
	}

	form := formView{
		Action:     editPath(id),
		Editing:    true,
		Name:       employee.Name,
		Department: employee.Department,
		Position:   employee.Position,
		Email:      employee.Email,
		Phone:      employee.Phone,
	}
	s.renderForm(w, r, http.StatusOK, form, back, "")
}

func (s *server) saveEmployee(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	if !security.VerifyCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	back := safeBack(r.FormValue("back"))
	fields := employees.Fields{
		Name:       r.FormValue("name"),
		Department: r.FormValue("department"),
		Position:   r.FormValue("position"),
		Email:      r.FormValue("email"),
		Phone:      r.FormValue("phone"),
	}

	var prior *employees.Employee
	form := formView{Action: routePaths[RouteAddEmployee]}
	if raw := strings.TrimSpace(r.PathValue("id")); raw != "" {
		id := employees.ID(raw)
		prior = &employees.Employee{ID: id}
		form = formView{Action: editPath(id), Editing: true}
	}

	err := s.employees.Save(r.Context(), prior, fields)
	if err == nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	form.Name = fields.Name
	form.Department = fields.Department
	form.Position = fields.Position
	form.Email = fields.Email
	form.Phone = fields.Phone

	var saveErr *employees.SaveError
	switch {
	case errors.Is(err, employees.ErrRequiredFields):
		s.renderForm(w, r, http.StatusUnprocessableEntity, form, back, employees.MessageRequiredFields)
	case errors.As(err, &saveErr):
		s.renderForm(w, r, http.StatusBadGateway, form, back, saveErr.Message())
	default:
		s.logger.Error("save employee failed", zap.Error(err))
		s.renderForm(w, r, http.StatusBadGateway, form, back, employees.MessageSaveFailed)
	}
}

func (s *server) renderForm(w http.ResponseWriter, r *http.Request, status int, form formView, back, errMsg string) {
	token, err := security.EnsureCSRFCookie(w, r)
	if err != nil {
		s.logger.Error("issue csrf token failed", zap.Error(err))
		http.Error(w, "unable to render form", http.StatusInternalServerError)
		return
	}
	s.render(w, s.formTmpl, status, pageData{
		Title: routeTitles[RouteAddEmployee],
		Error: errMsg,
		CSRF:  token,
		Back:  back,
		Form:  form,
	})
}

func (s *server) importEmployees(w http.ResponseWriter, r *http.Request) {
	listPath := routePaths[RouteEmployeeList]
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Redirect(w, r, listPath+"?error=Invalid+upload", http.StatusSeeOther)
		return
	}
	if !security.VerifyCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	file, header, err := r.FormFile("roster_file")
	if err != nil {
		http.Redirect(w, r, listPath+"?error=Roster+file+is+required", http.StatusSeeOther)
		return
	}
	defer file.Close()

	rows, err := roster.ReadRows(file, header.Filename)
	if err != nil {
		s.logger.Warn("read roster failed", zap.String("file", header.Filename), zap.Error(err))
		http.Redirect(w, r, listPath+"?error="+url.QueryEscape("Unable to read spreadsheet"), http.StatusSeeOther)
		return
	}
	parsed, err := roster.ParseEmployees(rows)
	if err != nil {
		http.Redirect(w, r, listPath+"?error="+url.QueryEscape("Spreadsheet needs Name and Department columns"), http.StatusSeeOther)
		return
	}

	result, err := s.employees.Import(r.Context(), parsed)
	if err != nil {
		http.Redirect(w, r, listPath+"?error="+url.QueryEscape("Failed to import employees"), http.StatusSeeOther)
		return
	}
	msg := fmt.Sprintf("Imported %d employees", result.Inserted)
	if result.Skipped > 0 {
		msg += fmt.Sprintf(" (%d rows skipped)", result.Skipped)
	}
	http.Redirect(w, r, listPath+"?message="+url.QueryEscape(msg), http.StatusSeeOther)
}

func (s *server) exportEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := s.employees.ListByName(r.Context())
	if err != nil {
		s.logger.Error("load employees failed", zap.String("screen", "export"), zap.Error(err))
		http.Error(w, "unable to load employees", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := roster.WriteRoster(&buf, list); err != nil {
		s.logger.Error("write roster failed", zap.Error(err))
		http.Error(w, "unable to build spreadsheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", roster.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// safeBack keeps a return path only when it points at one of the read
// screens of this app. Anything else falls back to the employee list.
func safeBack(raw string) string {
	fallback := routePaths[RouteEmployeeList]
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return fallback
	}
	switch parsed.Path {
	case routePaths[RouteHome], routePaths[RouteEmployeeList], routePaths[RouteDepartmentList]:
	default:
		return fallback
	}
	if q := strings.TrimSpace(parsed.Query().Get("q")); q != "" {
		return listURL(parsed.Path, q)
	}
	return parsed.Path
}

func listURL(path, search string) string {
	if search == "" {
		return path
	}
	return path + "?" + url.Values{"q": {search}}.Encode()
}

func editPath(id employees.ID) string {
	return "/employees/" + url.PathEscape(id.String()) + "/edit"
}

func editURL(id employees.ID, back string) string {
	return editPath(id) + "?" + url.Values{"back": {back}}.Encode()
}
