// Package raci aggregates role assignments from every process, plus manually
// declared actions, into one responsibility matrix per department.
package raci

import (
	"errors"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/process-raci/internal/domain"
)

var (
	// ErrUnknownRole indicates a role that is not part of the department.
	ErrUnknownRole = errors.New("role does not belong to the department")

	// ErrInvalidResponsibility indicates a letter other than R, A, C, I or unset.
	ErrInvalidResponsibility = errors.New("invalid responsibility")
)

// Counts tallies the letters of one row.
type Counts struct {
	R int `json:"R"`
	A int `json:"A"`
	C int `json:"C"`
	I int `json:"I"`
}

// Issue reports a row without a responsible party or without exactly one
// accountable party.
func (c Counts) Issue() bool {
	return c.R == 0 || c.A != 1
}

func (c *Counts) add(r domain.Responsibility) {
	switch r {
	case domain.ResponsibilityResponsible:
		c.R++
	case domain.ResponsibilityAccountable:
		c.A++
	case domain.ResponsibilityConsulted:
		c.C++
	case domain.ResponsibilityInformed:
		c.I++
	}
}

// Column is one role of a department matrix.
type Column struct {
	RoleID string `json:"roleId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// Row is one action of a matrix. Derived rows come from process steps and
// are read-only; manual rows are editable.
type Row struct {
	ID           string                           `json:"id"`
	ProcessID    string                           `json:"processId,omitempty"`
	ProcessTitle string                           `json:"processTitle,omitempty"`
	Label        string                           `json:"label"`
	Cells        map[string]domain.Responsibility `json:"cells"`
	Counts       Counts                           `json:"counts"`
	Issue        bool                             `json:"issue"`
	Manual       bool                             `json:"manual"`
}

// ProcessGroup holds the derived rows of one process.
type ProcessGroup struct {
	ProcessID string `json:"processId"`
	Title     string `json:"title"`
	Rows      []Row  `json:"rows"`
}

// DepartmentMatrix is the RACI view of one department.
type DepartmentMatrix struct {
	DepartmentID   string         `json:"departmentId"`
	DepartmentName string         `json:"departmentName"`
	Color          string         `json:"color"`
	Roles          []Column       `json:"roles"`
	Processes      []ProcessGroup `json:"processes"`
	Manual         []Row          `json:"manual"`
}

// Rows returns derived rows followed by manual rows, in display order.
func (m DepartmentMatrix) Rows() []Row {
	var out []Row
	for _, p := range m.Processes {
		out = append(out, p.Rows...)
	}
	return append(out, m.Manual...)
}

// Input is everything Build needs.
type Input struct {
	Departments []domain.Department
	// Sources are role/action feeds; several feeds may report the same
	// (role, step) pair and are merged without duplicates.
	Sources [][]domain.RoleActions
	Manual  []domain.ManualAction
	// Locale drives title and label ordering, e.g. "fr". Empty means root collation.
	Locale string
}

type stepAgg struct {
	id    string
	label string
	roles map[string]domain.Responsibility
}

type processAgg struct {
	id    string
	title string
	steps map[string]*stepAgg
	order []string
}

// Build returns one matrix per department, in department order.
func Build(in Input) []DepartmentMatrix {
	processes, order := aggregate(in.Sources)
	cmp := newComparer(in.Locale)

	out := make([]DepartmentMatrix, 0, len(in.Departments))
	for _, dept := range in.Departments {
		out = append(out, buildDepartment(dept, processes, order, in.Manual, cmp))
	}
	return out
}

// BuildDepartment returns the matrix of a single department.
func BuildDepartment(in Input, departmentID string) (DepartmentMatrix, bool) {
	for _, dept := range in.Departments {
		if dept.ID == departmentID {
			processes, order := aggregate(in.Sources)
			return buildDepartment(dept, processes, order, in.Manual, newComparer(in.Locale)), true
		}
	}
	return DepartmentMatrix{}, false
}

// aggregate groups every assignment by process then step, collecting the set
// of roles per step. The first letter seen for a (role, step) pair wins.
func aggregate(sources [][]domain.RoleActions) (map[string]*processAgg, []string) {
	processes := make(map[string]*processAgg)
	var order []string
	for _, source := range sources {
		for _, ra := range source {
			if ra.RoleID == "" {
				continue
			}
			for _, item := range ra.Actions {
				p, ok := processes[item.ProcessID]
				if !ok {
					p = &processAgg{id: item.ProcessID, title: item.ProcessTitle, steps: make(map[string]*stepAgg)}
					processes[item.ProcessID] = p
					order = append(order, item.ProcessID)
				}
				s, ok := p.steps[item.StepID]
				if !ok {
					s = &stepAgg{id: item.StepID, label: item.StepLabel, roles: make(map[string]domain.Responsibility)}
					p.steps[item.StepID] = s
					p.order = append(p.order, item.StepID)
				}
				if _, seen := s.roles[ra.RoleID]; !seen {
					s.roles[ra.RoleID] = item.Responsibility
				}
			}
		}
	}
	return processes, order
}

func buildDepartment(dept domain.Department, processes map[string]*processAgg, order []string, manual []domain.ManualAction, cmp *comparer) DepartmentMatrix {
	m := DepartmentMatrix{
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		Color:          dept.Color,
		Roles:          make([]Column, 0, len(dept.Roles)),
		Processes:      []ProcessGroup{},
		Manual:         []Row{},
	}
	inDept := make(map[string]struct{}, len(dept.Roles))
	for _, role := range dept.Roles {
		inDept[role.ID] = struct{}{}
		m.Roles = append(m.Roles, Column{RoleID: role.ID, Name: role.Name, Color: role.Color})
	}

	for _, pid := range order {
		p := processes[pid]
		group := ProcessGroup{ProcessID: p.id, Title: p.title}
		for _, sid := range p.order {
			s := p.steps[sid]
			row := Row{ID: s.id, ProcessID: p.id, ProcessTitle: p.title, Label: s.label, Cells: map[string]domain.Responsibility{}}
			for roleID, letter := range s.roles {
				if _, ok := inDept[roleID]; ok && letter != domain.ResponsibilityNone {
					row.Cells[roleID] = letter
				}
			}
			if len(row.Cells) == 0 {
				continue
			}
			finishRow(&row)
			group.Rows = append(group.Rows, row)
		}
		if len(group.Rows) == 0 {
			continue
		}
		sort.SliceStable(group.Rows, func(i, j int) bool {
			return cmp.less(group.Rows[i].Label, group.Rows[j].Label, group.Rows[i].ID, group.Rows[j].ID)
		})
		m.Processes = append(m.Processes, group)
	}
	sort.SliceStable(m.Processes, func(i, j int) bool {
		return cmp.less(m.Processes[i].Title, m.Processes[j].Title, m.Processes[i].ProcessID, m.Processes[j].ProcessID)
	})

	var actions []domain.ManualAction
	for _, action := range manual {
		if action.DepartmentID == dept.ID {
			actions = append(actions, action)
		}
	}
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Position != actions[j].Position {
			return actions[i].Position < actions[j].Position
		}
		return cmp.less(actions[i].Label, actions[j].Label, actions[i].ID, actions[j].ID)
	})
	for _, action := range actions {
		row := Row{ID: action.ID, Label: action.Label, Cells: map[string]domain.Responsibility{}, Manual: true}
		for roleID, letter := range action.Cells {
			if _, ok := inDept[roleID]; ok && letter != domain.ResponsibilityNone && letter.Valid() {
				row.Cells[roleID] = letter
			}
		}
		finishRow(&row)
		m.Manual = append(m.Manual, row)
	}
	return m
}

func finishRow(row *Row) {
	var c Counts
	for _, letter := range row.Cells {
		c.add(letter)
	}
	row.Counts = c
	row.Issue = c.Issue()
}

// SetCell returns a copy of action with the cell of roleID set to letter, or
// cleared when letter is unset. The role must belong to dept.
func SetCell(action domain.ManualAction, dept domain.Department, roleID string, letter domain.Responsibility) (domain.ManualAction, error) {
	if !letter.Valid() {
		return action, ErrInvalidResponsibility
	}
	if _, ok := dept.RoleByID(roleID); !ok || action.DepartmentID != dept.ID {
		return action, ErrUnknownRole
	}
	cells := make(map[string]domain.Responsibility, len(action.Cells)+1)
	for k, v := range action.Cells {
		cells[k] = v
	}
	if letter == domain.ResponsibilityNone {
		delete(cells, roleID)
	} else {
		cells[roleID] = letter
	}
	action.Cells = cells
	return action, nil
}

// DepartmentIssues summarizes flagged rows of one department.
type DepartmentIssues struct {
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Rows           int    `json:"rows"`
	Issues         int    `json:"issues"`
}

// Summarize counts rows and flagged rows per department.
func Summarize(matrices []DepartmentMatrix) []DepartmentIssues {
	out := make([]DepartmentIssues, 0, len(matrices))
	for _, m := range matrices {
		s := DepartmentIssues{DepartmentID: m.DepartmentID, DepartmentName: m.DepartmentName}
		for _, row := range m.Rows() {
			s.Rows++
			if row.Issue {
				s.Issues++
			}
		}
		out = append(out, s)
	}
	return out
}

type comparer struct {
	col *collate.Collator
}

// newComparer builds a case-insensitive collator. A Collator is not safe for
// concurrent use, so each Build gets its own.
func newComparer(locale string) *comparer {
	tag := language.Und
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return &comparer{col: collate.New(tag, collate.IgnoreCase)}
}

func (c *comparer) less(a, b, idA, idB string) bool {
	if r := c.col.CompareString(a, b); r != 0 {
		return r < 0
	}
	return idA < idB
}
