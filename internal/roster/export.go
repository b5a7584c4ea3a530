package roster

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/staffdesk/internal/employees"
)

const (
	EmployeesSheet   = "Employees"
	DepartmentsSheet = "Departments"
	ContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var employeeHeader = []any{"Name", "Department", "Position", "Email", "Phone"}

// WriteRoster writes list (already in display order) with department head
// counts sorted by department name.
func WriteRoster(w io.Writer, list []employees.Employee) error {
	byDepartment := append([]employees.Employee(nil), list...)
	sort.SliceStable(byDepartment, func(i, j int) bool {
		return byDepartment[i].Department < byDepartment[j].Department
	})
	return WriteWorkbook(w, list, employees.GroupByDepartment(byDepartment))
}

// WriteWorkbook writes an xlsx with one row per employee and a per-department
// head count. The Employees sheet reads back through ParseEmployees.
func WriteWorkbook(w io.Writer, list []employees.Employee, byDepartment []employees.Group) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), EmployeesSheet); err != nil {
		return fmt.Errorf("name employees sheet: %w", err)
	}
	if _, err := file.NewSheet(DepartmentsSheet); err != nil {
		return fmt.Errorf("create departments sheet: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := file.SetSheetRow(EmployeesSheet, "A1", &employeeHeader); err != nil {
		return err
	}
	for i, e := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Name, e.Department, e.Position, e.Email, e.Phone}
		if err := file.SetSheetRow(EmployeesSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := file.SetRowStyle(EmployeesSheet, 1, 1, bold); err != nil {
		return err
	}
	if err := file.SetColWidth(EmployeesSheet, "A", "E", 24); err != nil {
		return err
	}

	if err := file.SetSheetRow(DepartmentsSheet, "A1", &[]any{"Department", "Employees"}); err != nil {
		return err
	}
	for i, g := range byDepartment {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(DepartmentsSheet, cell, &[]any{g.Department, g.Count()}); err != nil {
			return err
		}
	}
	if err := file.SetRowStyle(DepartmentsSheet, 1, 1, bold); err != nil {
		return err
	}
	if err := file.SetColWidth(DepartmentsSheet, "A", "B", 24); err != nil {
		return err
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
