package export

import (
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pdfFont       = "go"
	pdfLineHeight = 7.0
)

type pdfWriter struct{}

func (pdfWriter) Format() string      { return "pdf" }
func (pdfWriter) Ext() string         { return "pdf" }
func (pdfWriter) ContentType() string { return "application/pdf" }

// Write lays the table out on landscape A4 pages: the title, then the header
// row, then the rows. The header row repeats on every page. Cells are cut to
// their column width.
func (pdfWriter) Write(w io.Writer, t Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(t.Title, true)
	pdf.AddUTF8FontFromBytes(pdfFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", gobold.TTF)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colW := pageW - left - right
	if n := len(t.Headers); n > 0 {
		colW /= float64(n)
	}

	header := func() {
		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetFillColor(230, 233, 239)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, pdfLineHeight, fit(pdf, h, colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 9)
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 10, t.Title, "", 1, "L", false, 0, "")
	header()

	for _, row := range t.Rows {
		if pdf.GetY()+pdfLineHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for i := range t.Headers {
			var v string
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(colW, pdfLineHeight, fit(pdf, v, colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// fit shortens s with an ellipsis until it fits width in the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"…") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
