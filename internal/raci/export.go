package raci

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is an export format of a department matrix.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat returns the format named by s, or false.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatMarkdown, FormatHTML, FormatXLSX:
		return f, true
	case "markdown":
		return FormatMarkdown, true
	}
	return "", false
}

// ContentType returns the MIME type of an export.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Extension is the file extension of an export.
func (f Format) Extension() string {
	return "." + string(f)
}

const (
	issueMark = "Issue"
	okMark    = "OK"
)

// Table flattens a matrix into a header and rows in display order. Every
// export serializes this table so all of them share role and action order.
func Table(m DepartmentMatrix) ([]string, [][]string) {
	header := make([]string, 0, len(m.Roles)+3)
	header = append(header, "Process", "Action")
	for _, col := range m.Roles {
		header = append(header, col.Name)
	}
	header = append(header, "Status")

	var rows [][]string
	for _, row := range m.Rows() {
		record := make([]string, 0, len(header))
		record = append(record, row.ProcessTitle, row.Label)
		for _, col := range m.Roles {
			record = append(record, string(row.Cells[col.RoleID]))
		}
		if row.Issue {
			record = append(record, issueMark)
		} else {
			record = append(record, okMark)
		}
		rows = append(rows, record)
	}
	return header, rows
}

// Export serializes m in the requested format.
func Export(m DepartmentMatrix, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		s, err := CSV(m)
		return []byte(s), err
	case FormatMarkdown:
		return []byte(Markdown(m)), nil
	case FormatHTML:
		s, err := HTML(m)
		return []byte(s), err
	case FormatXLSX:
		return XLSX(m)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// CSV renders m as semicolon separated values with doubled-quote escaping.
func CSV(m DepartmentMatrix) (string, error) {
	header, rows := Table(m)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// Markdown renders m as a pipe table.
func Markdown(m DepartmentMatrix) string {
	header, rows := Table(m)
	var b strings.Builder
	writeMarkdownRow(&b, header)
	b.WriteByte('|')
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')
	for _, row := range rows {
		writeMarkdownRow(&b, row)
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteByte('|')
	for _, cell := range cells {
		b.WriteByte(' ')
		b.WriteString(markdownEscaper.Replace(cell))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}

var htmlTable = template.Must(template.New("raci").Parse(
	`<section class="raci-print">
<h2>{{.Title}}</h2>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr{{if .Issue}} class="issue"{{end}}>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</section>
`))

type htmlRow struct {
	Cells []string
	Issue bool
}

// HTML renders m as a printable fragment.
func HTML(m DepartmentMatrix) (string, error) {
	header, rows := Table(m)
	data := struct {
		Title  string
		Header []string
		Rows   []htmlRow
	}{Title: m.DepartmentName, Header: header}
	for _, row := range rows {
		data.Rows = append(data.Rows, htmlRow{Cells: row, Issue: row[len(row)-1] == issueMark})
	}
	var buf bytes.Buffer
	if err := htmlTable.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// XLSX renders m as a single-sheet workbook.
func XLSX(m DepartmentMatrix) ([]byte, error) {
	header, rows := Table(m)

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(m.DepartmentName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	issueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#B91C1C", Bold: true},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
		if row[len(row)-1] == issueMark {
			cell, _ := excelize.CoordinatesToCellName(len(row), r+2)
			if err := f.SetCellStyle(sheet, cell, cell, issueStyle); err != nil {
				return nil, err
			}
		}
	}

	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 12.0
		if i < 2 {
			width = 30
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var sheetNameEscaper = strings.NewReplacer(":", " ", `\`, " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")

// sheetName strips characters Excel forbids and truncates to 31 runes.
func sheetName(name string) string {
	name = strings.TrimSpace(sheetNameEscaper.Replace(name))
	if name == "" {
		return "RACI"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
