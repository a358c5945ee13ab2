package raci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/process-raci/internal/domain"
)

func exportMatrix() DepartmentMatrix {
	return DepartmentMatrix{
		DepartmentID:   "d-sales",
		DepartmentName: "Sales",
		Roles:          []Column{{RoleID: "r-rep", Name: "Rep"}, {RoleID: "r-head", Name: `Head "B|C"`}},
		Processes: []ProcessGroup{{ProcessID: "p", Title: "Quote; cash", Rows: []Row{
			{ID: "s1", ProcessTitle: "Quote; cash", Label: "Send <quote>", Cells: map[string]domain.Responsibility{"r-rep": "R", "r-head": "A"}, Counts: Counts{R: 1, A: 1}},
		}}},
		Manual: []Row{
			{ID: "m1", Label: "Forecast", Cells: map[string]domain.Responsibility{"r-head": "A"}, Counts: Counts{A: 1}, Issue: true, Manual: true},
		},
	}
}

func TestTableOrder(t *testing.T) {
	header, rows := Table(exportMatrix())
	assert.Equal(t, []string{"Process", "Action", "Rep", `Head "B|C"`, "Status"}, header)
	assert.Equal(t, [][]string{
		{"Quote; cash", "Send <quote>", "R", "A", "OK"},
		{"", "Forecast", "", "A", "Issue"},
	}, rows)
}

func TestCSV(t *testing.T) {
	out, err := CSV(exportMatrix())
	require.NoError(t, err)
	want := "Process;Action;Rep;\"Head \"\"B|C\"\"\";Status\n" +
		"\"Quote; cash\";Send <quote>;R;A;OK\n" +
		";Forecast;;A;Issue\n"
	assert.Equal(t, want, out)
}

func TestMarkdown(t *testing.T) {
	want := "| Process | Action | Rep | Head \"B\\|C\" | Status |\n" +
		"| --- | --- | --- | --- | --- |\n" +
		"| Quote; cash | Send <quote> | R | A | OK |\n" +
		"|  | Forecast |  | A | Issue |\n"
	assert.Equal(t, want, Markdown(exportMatrix()))
}

func TestHTMLEscapes(t *testing.T) {
	out, err := HTML(exportMatrix())
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Sales</h2>")
	assert.Contains(t, out, "<td>Send &lt;quote&gt;</td>")
	assert.Contains(t, out, `<tr class="issue"><td></td><td>Forecast</td>`)
	assert.Less(t, strings.Index(out, "Send"), strings.Index(out, "Forecast"))
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(exportMatrix())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Process", "Action", "Rep", `Head "B|C"`, "Status"}, rows[0])
	assert.Equal(t, []string{"Quote; cash", "Send <quote>", "R", "A", "OK"}, rows[1])
}

func TestExportFormats(t *testing.T) {
	for _, name := range []string{"csv", "MD", "markdown", "html", "xlsx"} {
		format, ok := ParseFormat(name)
		require.True(t, ok, name)
		out, err := Export(exportMatrix(), format)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	}
	_, ok := ParseFormat("pdf")
	assert.False(t, ok)
	assert.Equal(t, ".md", FormatMarkdown.Extension())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "RACI", sheetName(" "))
	assert.Equal(t, "R D", sheetName("R/D"))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), 31)
}
