package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/raci"
)

func seedSalesProcess(t *testing.T, f *fixture) *domain.Process {
	t.Helper()
	p, err := f.process.Create(context.Background(), "u1", "Quote", []domain.Step{
		domain.StartStep{},
		domain.ActionStep{ID: "s-send", Label: "Send quote", Assignment: domain.Assignment{RoleID: ptr("r-rep")}},
		domain.DecisionStep{ID: "s-ok", Label: "Approve", Assignment: domain.Assignment{RoleID: ptr("r-head")}},
		domain.FinishStep{},
	})
	require.NoError(t, err)
	return p
}

func TestOverviewIsCachedUntilDataChanges(t *testing.T) {
	f := newFixture(t, nil)
	f.seedSales()
	seedSalesProcess(t, f)
	ctx := context.Background()

	overview, err := f.matrices.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, []raci.DepartmentIssues{{DepartmentID: "d-sales", DepartmentName: "Sales", Rows: 2, Issues: 2}}, overview.Summary)
	require.Len(t, overview.Departments, 1)

	again, err := f.matrices.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, overview.Summary, again.Summary)
	assert.Equal(t, 1, f.cache.Hits)

	action, err := f.matrices.CreateAction(ctx, "u1", "d-sales", "Forecast")
	require.NoError(t, err)
	fresh, err := f.matrices.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Hits, "raci change purges the cached overview")
	assert.Equal(t, 3, fresh.Summary[0].Rows)

	_, err = f.matrices.SetCell(ctx, "u1", action.ID, "r-rep", "r")
	require.NoError(t, err)
	_, err = f.matrices.SetCell(ctx, "u1", action.ID, "r-head", domain.ResponsibilityAccountable)
	require.NoError(t, err)
	fresh, err = f.matrices.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Summary[0].Issues, "a complete manual row is not flagged")
}

func TestManualActions(t *testing.T) {
	f := newFixture(t, nil)
	f.seedSales()
	ctx := context.Background()

	first, err := f.matrices.CreateAction(ctx, "u1", "d-sales", "Forecast")
	require.NoError(t, err)
	second, err := f.matrices.CreateAction(ctx, "u1", "d-sales", " Pipeline review ")
	require.NoError(t, err)
	assert.Equal(t, "Pipeline review", second.Label)
	assert.Greater(t, second.Position, first.Position)

	updated, err := f.matrices.SetCell(ctx, "u1", first.ID, "r-head", "A")
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Responsibility{"r-head": "A"}, updated.Cells)

	_, err = f.matrices.RenameAction(ctx, "u1", second.ID, "Pipeline")
	require.NoError(t, err)

	m, err := f.matrices.Department(ctx, "d-sales")
	require.NoError(t, err)
	require.Len(t, m.Manual, 2)
	assert.Equal(t, "Forecast", m.Manual[0].Label)
	assert.Equal(t, raci.Counts{A: 1}, m.Manual[0].Counts)
	assert.Equal(t, "Pipeline", m.Manual[1].Label)

	cleared, err := f.matrices.SetCell(ctx, "u1", first.ID, "r-head", "")
	require.NoError(t, err)
	assert.Empty(t, cleared.Cells)

	_, err = f.matrices.SetCell(ctx, "u1", first.ID, "r-other", "R")
	requireCode(t, err, "VALIDATION_FAILED")
	_, err = f.matrices.SetCell(ctx, "u1", first.ID, "r-rep", "X")
	requireCode(t, err, "VALIDATION_FAILED")
	_, err = f.matrices.CreateAction(ctx, "u1", "missing", "x")
	requireCode(t, err, "NOT_FOUND")
	_, err = f.matrices.CreateAction(ctx, "u1", "d-sales", "")
	requireCode(t, err, "VALIDATION_FAILED")

	require.NoError(t, f.matrices.DeleteAction(ctx, "u1", second.ID))
	requireCode(t, f.matrices.DeleteAction(ctx, "u1", second.ID), "NOT_FOUND")
	_, err = f.matrices.Department(ctx, "missing")
	requireCode(t, err, "NOT_FOUND")
}

func TestExport(t *testing.T) {
	f := newFixture(t, nil)
	f.seedSales()
	seedSalesProcess(t, f)
	ctx := context.Background()

	file, err := f.matrices.Export(ctx, "d-sales", "csv")
	require.NoError(t, err)
	assert.Equal(t, "sales-raci.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Process;Action;Rep;Head;Status", lines[0])
	assert.Equal(t, "Quote;Approve;;A;Issue", lines[1])

	_, err = f.matrices.Export(ctx, "d-sales", "pdf")
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "sales-ops", fileName("Sales  Ops"))
	assert.Equal(t, "r-d", fileName("R & D"))
	assert.Equal(t, "department", fileName("***"))
}
