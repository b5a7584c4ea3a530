package employees

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sample() []Employee {
	return []Employee{
		{ID: "1", Fields: Fields{Name: "Alice Jones", Department: "Engineering", Position: "Engineer"}},
		{ID: "2", Fields: Fields{Name: "Bob Smith", Department: "Sales", Position: "Rep"}},
		{ID: "3", Fields: Fields{Name: "Carla Salazar", Department: "Support", Position: "Agent"}},
		{ID: "4", Fields: Fields{Name: "Dan Wu", Department: "sales", Position: "Lead"}},
	}
}

func ids(list []Employee) []ID {
	out := make([]ID, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []ID
	}{
		{name: "empty query keeps all", query: "", want: []ID{"1", "2", "3", "4"}},
		{name: "department match without name match", query: "sal", want: []ID{"2", "3", "4"}},
		{name: "case insensitive name", query: "ALICE", want: []ID{"1"}},
		{name: "department only", query: "engineering", want: []ID{"1"}},
		{name: "no match", query: "marketing", want: []ID{}},
		{name: "substring inside word", query: "mit", want: []ID{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sample(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Filter(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilterFoldsUnicode(t *testing.T) {
	list := []Employee{{ID: "1", Fields: Fields{Name: "Jürgen Groß", Department: "Ops"}}}
	if got := Filter(list, "GROSS"); len(got) != 1 {
		t.Fatalf("expected folded match for GROSS, got %d", len(got))
	}
	if got := Filter(list, "JÜRGEN"); len(got) != 1 {
		t.Fatalf("expected folded match for JÜRGEN, got %d", len(got))
	}
}

func TestGroupByDepartmentUsesExactValues(t *testing.T) {
	groups := GroupByDepartment(sample())
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups (Sales and sales differ), got %d", len(groups))
	}

	type summary struct {
		Department string
		Count      int
		Members    []ID
	}
	got := make([]summary, 0, len(groups))
	for _, g := range groups {
		got = append(got, summary{Department: g.Department, Count: g.Count(), Members: ids(g.Employees)})
	}
	want := []summary{
		{Department: "Engineering", Count: 1, Members: []ID{"1"}},
		{Department: "Sales", Count: 1, Members: []ID{"2"}},
		{Department: "Support", Count: 1, Members: []ID{"3"}},
		{Department: "sales", Count: 1, Members: []ID{"4"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupCountMatchesMembers(t *testing.T) {
	list := []Employee{
		{ID: "1", Fields: Fields{Name: "A", Department: "Ops"}},
		{ID: "2", Fields: Fields{Name: "B", Department: "Ops"}},
		{ID: "3", Fields: Fields{Name: "C", Department: "Sales"}},
		{ID: "4", Fields: Fields{Name: "D", Department: "Ops"}},
	}
	groups := GroupByDepartment(list)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Department != "Ops" || groups[0].Count() != 3 {
		t.Fatalf("expected Ops with 3 members, got %s with %d", groups[0].Department, groups[0].Count())
	}
	if diff := cmp.Diff([]ID{"1", "2", "4"}, ids(groups[0].Employees)); diff != "" {
		t.Fatalf("member order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterGroupsMatchesDepartmentOnly(t *testing.T) {
	groups := GroupByDepartment(sample())
	got := FilterGroups(groups, "SUP")
	if len(got) != 1 || got[0].Department != "Support" {
		t.Fatalf("expected only Support, got %+v", got)
	}
	// "alice" is a name, not a department.
	if got := FilterGroups(groups, "alice"); len(got) != 0 {
		t.Fatalf("expected no groups for a name query, got %d", len(got))
	}
	if got := FilterGroups(groups, ""); len(got) != len(groups) {
		t.Fatalf("expected all groups for empty query, got %d", len(got))
	}
}
