package employees

import (
	"strings"

	"golang.org/x/text/cases"
)

// Group is every employee sharing one exact department value.
type Group struct {
	Department string
	Employees  []Employee
}

func (g Group) Count() int {
	return len(g.Employees)
}

// Filter keeps the employees whose name or department contains query, ignoring
// case. An empty query keeps everything. Input order is preserved.
func Filter(list []Employee, query string) []Employee {
	needle := fold(query)
	out := make([]Employee, 0, len(list))
	for _, employee := range list {
		if needle == "" ||
			strings.Contains(fold(employee.Name), needle) ||
			strings.Contains(fold(employee.Department), needle) {
			out = append(out, employee)
		}
	}
	return out
}

// GroupByDepartment buckets employees by exact department. Groups come out in
// order of first appearance and members keep their input order.
func GroupByDepartment(list []Employee) []Group {
	index := map[string]int{}
	groups := make([]Group, 0)
	for _, employee := range list {
		idx, ok := index[employee.Department]
		if !ok {
			idx = len(groups)
			index[employee.Department] = idx
			groups = append(groups, Group{Department: employee.Department})
		}
		groups[idx].Employees = append(groups[idx].Employees, employee)
	}
	return groups
}

// FilterGroups keeps the groups whose department name contains query, ignoring case.
func FilterGroups(groups []Group, query string) []Group {
	needle := fold(query)
	out := make([]Group, 0, len(groups))
	for _, group := range groups {
		if needle == "" || strings.Contains(fold(group.Department), needle) {
			out = append(out, group)
		}
	}
	return out
}

func fold(s string) string {
	// Caser is stateful; never share one across goroutines.
	return cases.Fold().String(s)
}
