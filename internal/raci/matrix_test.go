package raci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
)

func ptr(s string) *string { return &s }

func departments() []domain.Department {
	return []domain.Department{
		{ID: "d-sales", Name: "Sales", Color: "#16a34a", Roles: []domain.Role{
			{ID: "r-rep", DepartmentID: "d-sales", Name: "Rep"},
			{ID: "r-head", DepartmentID: "d-sales", Name: "Head of Sales"},
		}},
		{ID: "d-fin", Name: "Finance", Roles: []domain.Role{
			{ID: "r-ctrl", DepartmentID: "d-fin", Name: "Controller"},
		}},
	}
}

func processes() []domain.Process {
	return []domain.Process{
		{ID: "p-2", Title: "quote to cash", Steps: domain.Steps{
			domain.StartStep{},
			domain.ActionStep{ID: "s-send", Label: "send quote", Assignment: domain.Assignment{DepartmentID: ptr("d-sales"), RoleID: ptr("r-rep")}},
			domain.DecisionStep{ID: "s-approve", Label: "Approve", Assignment: domain.Assignment{DepartmentID: ptr("d-sales"), RoleID: ptr("r-head")}},
			domain.ActionStep{ID: "s-bill", Label: "Bill", Assignment: domain.Assignment{DepartmentID: ptr("d-fin"), RoleID: ptr("r-ctrl")}},
			domain.ActionStep{ID: "s-none", Label: "Unassigned", Assignment: domain.Assignment{DepartmentID: ptr("d-fin")}},
			domain.FinishStep{},
		}},
		{ID: "p-1", Title: "Onboarding", Steps: domain.Steps{
			domain.StartStep{},
			domain.ActionStep{ID: "s-call", Label: "Call", Assignment: domain.Assignment{RoleID: ptr("r-rep")}},
			domain.FinishStep{},
		}},
	}
}

func TestDeriveRoleActions(t *testing.T) {
	got := DeriveRoleActions(processes(), departments())
	require.Len(t, got, 3)

	assert.Equal(t, "r-rep", got[0].RoleID)
	assert.Equal(t, "Sales", got[0].DepartmentName)
	require.Len(t, got[0].Actions, 2)
	assert.Equal(t, domain.RoleActionItem{ProcessID: "p-2", ProcessTitle: "quote to cash", StepID: "s-send", StepLabel: "send quote",
		Responsibility: domain.ResponsibilityResponsible}, got[0].Actions[0])

	require.Len(t, got[1].Actions, 1)
	assert.Equal(t, domain.ResponsibilityAccountable, got[1].Actions[0].Responsibility, "decision steps are accountable")

	assert.Equal(t, "r-ctrl", got[2].RoleID)
	assert.Len(t, got[2].Actions, 1, "steps without a role are skipped")
}

func TestBuildGroupsAndSorts(t *testing.T) {
	depts := departments()
	matrices := Build(Input{Departments: depts, Sources: [][]domain.RoleActions{DeriveRoleActions(processes(), depts)}})
	require.Len(t, matrices, 2)

	sales := matrices[0]
	assert.Equal(t, []Column{{RoleID: "r-rep", Name: "Rep"}, {RoleID: "r-head", Name: "Head of Sales"}}, sales.Roles)
	require.Len(t, sales.Processes, 2)
	assert.Equal(t, "Onboarding", sales.Processes[0].Title, "titles sort case-insensitively")
	assert.Equal(t, "quote to cash", sales.Processes[1].Title)

	rows := sales.Processes[1].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Approve", rows[0].Label)
	assert.Equal(t, "send quote", rows[1].Label)
	assert.Equal(t, map[string]domain.Responsibility{"r-head": "A"}, rows[0].Cells)
	assert.Equal(t, Counts{A: 1}, rows[0].Counts)
	assert.True(t, rows[0].Issue, "no responsible party")
	assert.Equal(t, Counts{R: 1}, rows[1].Counts)
	assert.True(t, rows[1].Issue, "no accountable party")

	fin := matrices[1]
	require.Len(t, fin.Processes, 1)
	require.Len(t, fin.Processes[0].Rows, 1)
	assert.Equal(t, "s-bill", fin.Processes[0].Rows[0].ID)
}

func TestBuildDeduplicatesAcrossSources(t *testing.T) {
	item := domain.RoleActionItem{ProcessID: "p", ProcessTitle: "P", StepID: "s", StepLabel: "Step", Responsibility: "R"}
	source := []domain.RoleActions{{RoleID: "r-rep", Actions: []domain.RoleActionItem{item}}}
	other := []domain.RoleActions{
		{RoleID: "r-rep", Actions: []domain.RoleActionItem{item}},
		{RoleID: "r-head", Actions: []domain.RoleActionItem{{ProcessID: "p", ProcessTitle: "P", StepID: "s", StepLabel: "Step", Responsibility: "A"}}},
		{RoleID: "r-ctrl", Actions: []domain.RoleActionItem{{ProcessID: "p", ProcessTitle: "P", StepID: "s", StepLabel: "Step", Responsibility: "C"}}},
	}

	matrices := Build(Input{Departments: departments(), Sources: [][]domain.RoleActions{source, other}})
	row := matrices[0].Processes[0].Rows[0]
	assert.Equal(t, Counts{R: 1, A: 1}, row.Counts)
	assert.False(t, row.Issue)

	finRow := matrices[1].Processes[0].Rows[0]
	assert.Equal(t, map[string]domain.Responsibility{"r-ctrl": "C"}, finRow.Cells, "each department sees its own slice")
	assert.True(t, finRow.Issue)
}

func TestBuildSortTieBreaksOnID(t *testing.T) {
	source := []domain.RoleActions{{RoleID: "r-rep", Actions: []domain.RoleActionItem{
		{ProcessID: "p", ProcessTitle: "P", StepID: "b", StepLabel: "same", Responsibility: "R"},
		{ProcessID: "p", ProcessTitle: "P", StepID: "a", StepLabel: "Same", Responsibility: "R"},
		{ProcessID: "p", ProcessTitle: "P", StepID: "c", StepLabel: "Émettre", Responsibility: "R"},
	}}}
	m, ok := BuildDepartment(Input{Departments: departments(), Sources: [][]domain.RoleActions{source}}, "d-sales")
	require.True(t, ok)
	rows := m.Processes[0].Rows
	assert.Equal(t, []string{"c", "a", "b"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestBuildManualRows(t *testing.T) {
	manual := []domain.ManualAction{
		{ID: "m2", DepartmentID: "d-sales", Label: "Review pipeline", Position: 1,
			Cells: map[string]domain.Responsibility{"r-rep": "R", "r-head": "A", "r-ctrl": "C"}},
		{ID: "m1", DepartmentID: "d-sales", Label: "Forecast", Position: 0,
			Cells: map[string]domain.Responsibility{"r-head": "A", "r-rep": "X"}},
		{ID: "m3", DepartmentID: "d-fin", Label: "Close books"},
	}
	m, ok := BuildDepartment(Input{Departments: departments(), Manual: manual}, "d-sales")
	require.True(t, ok)
	assert.Empty(t, m.Processes)
	require.Len(t, m.Manual, 2)

	assert.Equal(t, "m1", m.Manual[0].ID)
	assert.Equal(t, Counts{A: 1}, m.Manual[0].Counts, "invalid letters are ignored")
	assert.True(t, m.Manual[0].Issue)

	assert.Equal(t, map[string]domain.Responsibility{"r-rep": "R", "r-head": "A"}, m.Manual[1].Cells, "foreign roles are ignored")
	assert.False(t, m.Manual[1].Issue)
	assert.True(t, m.Manual[1].Manual)
}

func TestBuildDepartmentUnknown(t *testing.T) {
	_, ok := BuildDepartment(Input{Departments: departments()}, "missing")
	assert.False(t, ok)
}

func TestSetCell(t *testing.T) {
	dept := departments()[0]
	action := domain.ManualAction{ID: "m", DepartmentID: "d-sales", Cells: map[string]domain.Responsibility{"r-rep": "R"}}

	updated, err := SetCell(action, dept, "r-head", domain.ResponsibilityAccountable)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Responsibility{"r-rep": "R", "r-head": "A"}, updated.Cells)
	assert.Len(t, action.Cells, 1, "input is not mutated")

	cleared, err := SetCell(updated, dept, "r-rep", domain.ResponsibilityNone)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Responsibility{"r-head": "A"}, cleared.Cells)

	_, err = SetCell(action, dept, "r-ctrl", "R")
	assert.ErrorIs(t, err, ErrUnknownRole)
	_, err = SetCell(action, dept, "r-rep", "X")
	assert.ErrorIs(t, err, ErrInvalidResponsibility)
}

func TestCountsIssue(t *testing.T) {
	assert.False(t, Counts{R: 2, A: 1, I: 3}.Issue())
	assert.True(t, Counts{R: 1, A: 2}.Issue())
	assert.True(t, Counts{}.Issue())
}

func TestSummarize(t *testing.T) {
	depts := departments()
	matrices := Build(Input{Departments: depts, Sources: [][]domain.RoleActions{DeriveRoleActions(processes(), depts)}})
	summary := Summarize(matrices)
	assert.Equal(t, []DepartmentIssues{
		{DepartmentID: "d-sales", DepartmentName: "Sales", Rows: 3, Issues: 3},
		{DepartmentID: "d-fin", DepartmentName: "Finance", Rows: 1, Issues: 1},
	}, summary)
}
