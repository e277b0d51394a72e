package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"quicktask/internal/models"
)

const reportTitle = "QuickTask - Tasks Export"

// Generator renders task lists as PDF (удобно мокать в тестах).
type Generator interface {
	WriteTasks(w io.Writer, tasks []models.Task) error
}

// TaskReportGenerator is the gofpdf-backed Generator.
type TaskReportGenerator struct {
	FontPath string // путь до TTF; пусто = встроенный Helvetica (cp1252)
	fontName string
}

func NewTaskReportGenerator(fontPath string) *TaskReportGenerator {
	g := &TaskReportGenerator{FontPath: strings.TrimSpace(fontPath), fontName: "Helvetica"}
	if g.FontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *TaskReportGenerator) WriteTasks(w io.Writer, tasks []models.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(reportTitle, true)
	pdf.SetAuthor("QuickTask", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	text := g.setupFont(pdf)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 20)
	pdf.CellFormat(0, 12, text(reportTitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(tasks) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, text("No tasks."), "", 1, "L", false, 0, "")
	}

	for i, t := range tasks {
		pdf.SetFont(g.fontName, "U", 12)
		pdf.MultiCell(0, 7, text(fmt.Sprintf("%d. %s", i+1, t.Title)), "", "L", false)

		pdf.SetFont(g.fontName, "", 10)
		g.line(pdf, text(fmt.Sprintf("Status: %s | Priority: %s", t.Status, t.Priority)))
		due := "None"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		g.line(pdf, text("Due Date: "+due))
		desc := t.Description
		if desc == "" {
			desc = "N/A"
		}
		g.line(pdf, text("Description: "+desc))
		pdf.Ln(4)
	}

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return pdf.Output(w)
}

func (g *TaskReportGenerator) line(pdf *gofpdf.Fpdf, s string) {
	pdf.MultiCell(0, 5, s, "", "L", false)
}

// setupFont registers the UTF-8 font when configured and returns the string
// encoder matching the selected font.
func (g *TaskReportGenerator) setupFont(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}
