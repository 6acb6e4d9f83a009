package table

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

// PDFOptions controls a PDF export.
type PDFOptions struct {
	Title     string
	Subtitle  string
	Generated time.Time
	// Landscape switches to A4 landscape for wide tables.
	Landscape bool
}

const (
	pdfMargin     = 10.0
	pdfLineHeight = 7.0
)

// WritePDF writes v as a paginated PDF table to w. Header rows repeat on every page.
func WritePDF(w io.Writer, v View, opts PDFOptions) error {
	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin
	widths := columnWidths(len(v.Headers), usable)

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range v.Headers {
			label := h.Label
			if ind := h.Indicator(); ind != "" {
				label += " (" + string(h.Direction) + ")"
			}
			pdf.CellFormat(widths[i], pdfLineHeight, tr(fit(pdf, label, widths[i])), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(opts.Title))
	pdf.Ln(10)
	if opts.Subtitle != "" || !opts.Generated.IsZero() {
		pdf.SetFont("Helvetica", "I", 9)
		line := opts.Subtitle
		if !opts.Generated.IsZero() {
			if line != "" {
				line += "  |  "
			}
			line += "Generated " + opts.Generated.Format("2006-01-02 15:04")
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(8)
	}
	writeHeader()

	if v.Empty {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(usable, pdfLineHeight, tr(v.EmptyText), "1", 1, "C", false, 0, "")
	}
	for _, row := range v.Rows {
		if pdf.GetY()+pdfLineHeight > pageH-pdfMargin {
			pdf.AddPage()
			writeHeader()
		}
		for i, cell := range row.Cells {
			style := ""
			if cell.Missing {
				style = "I"
			}
			pdf.SetFont("Helvetica", style, 9)
			pdf.CellFormat(widths[i], pdfLineHeight, tr(fit(pdf, cell.Text, widths[i])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func columnWidths(n int, usable float64) []float64 {
	widths := make([]float64, n)
	if n == 0 {
		return widths
	}
	each := usable / float64(n)
	for i := range widths {
		widths[i] = each
	}
	return widths
}

// fit truncates s with an ellipsis so it fits in width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
