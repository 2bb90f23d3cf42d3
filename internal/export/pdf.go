package export

import (
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Renderer turns a laid-out document into bytes on w
type Renderer interface {
	Render(w io.Writer, doc *Document) error
}

type rgb struct{ r, g, b int }

var (
	colorText      = rgb{51, 65, 85}
	colorAccent    = rgb{37, 99, 235}
	colorTitle     = rgb{226, 232, 240}
	colorSection   = rgb{148, 163, 184}
	colorMuted     = rgb{100, 116, 139}
	colorBorder    = rgb{226, 232, 240}
	colorRowBorder = rgb{241, 245, 249}
)

const (
	pageMargin = 40.0
	fontFamily = "Helvetica"
	lineHeight = 15.0
	rowHeight  = 20.0
)

// PDFRenderer draws documents on A4 pages with the core Helvetica font
type PDFRenderer struct {
	clock func() time.Time
}

// NewPDFRenderer creates a renderer stamping documents with the current time
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{clock: time.Now}
}

// Render writes doc as a PDF. Rows that do not fit continue on a new page under a
// repeated table header.
func (r *PDFRenderer) Render(w io.Writer, doc *Document) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCreationDate(r.clock())
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetSubject(doc.Subject, true)
	pdf.SetCreator("billbook", false)

	// Core fonts are cp1252; translate so accented names survive
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	p := &page{pdf: pdf, tr: tr}
	pdf.AddPage()

	p.header(doc.Header)
	p.parties(doc.From, doc.BillTo)
	p.table(doc.Columns, doc.Rows)
	p.totals(doc.Totals)
	if doc.Notes != "" {
		p.notes(doc.Notes)
	}
	p.footer(doc.Footer)

	return pdf.Output(w)
}

type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) color(c rgb) {
	p.pdf.SetTextColor(c.r, c.g, c.b)
}

func (p *page) contentWidth() float64 {
	w, _ := p.pdf.GetPageSize()
	left, _, right, _ := p.pdf.GetMargins()
	return w - left - right
}

func (p *page) bottomLimit() float64 {
	_, h := p.pdf.GetPageSize()
	_, _, _, bottom := p.pdf.GetMargins()
	return h - bottom
}

func (p *page) header(h Header) {
	pdf := p.pdf
	cw := p.contentWidth()
	left, top, _, _ := pdf.GetMargins()
	half := cw / 2

	pdf.SetFont(fontFamily, "B", 24)
	p.color(colorAccent)
	pdf.SetXY(left, top)
	pdf.CellFormat(half, 36, p.tr(h.Issuer), "", 0, "L", false, 0, "")

	pdf.SetXY(left+half, top)
	pdf.SetFont(fontFamily, "B", 32)
	p.color(colorTitle)
	pdf.CellFormat(half, 36, p.tr(h.Title), "", 2, "R", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	p.color(colorText)
	for _, line := range []string{h.Number, h.Date, h.DueDate} {
		pdf.CellFormat(half, lineHeight, p.tr(line), "", 2, "R", false, 0, "")
	}

	pdf.Ln(40)
}

func (p *page) parties(from, to Party) {
	pdf := p.pdf
	left, _, _, _ := pdf.GetMargins()
	half := p.contentWidth() / 2
	y := pdf.GetY()

	endFrom := p.party(left, y, half, from)
	endTo := p.party(left+half, y, half, to)

	pdf.SetXY(left, max(endFrom, endTo))
	pdf.Ln(20)
}

func (p *page) party(x, y, w float64, party Party) float64 {
	pdf := p.pdf
	pdf.SetXY(x, y)

	pdf.SetFont(fontFamily, "B", 10)
	p.color(colorSection)
	pdf.CellFormat(w, lineHeight, p.tr(strings.ToUpper(party.Heading)), "", 2, "L", false, 0, "")

	p.color(colorText)
	pdf.CellFormat(w, lineHeight, p.tr(party.Name), "", 2, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	for _, line := range party.Lines {
		pdf.SetX(x)
		pdf.MultiCell(w, lineHeight, p.tr(line), "", "L", false)
	}
	return pdf.GetY()
}

func (p *page) columnWidths() [4]float64 {
	cw := p.contentWidth()
	return [4]float64{cw * 0.50, cw * 0.15, cw * 0.15, cw * 0.20}
}

func (p *page) tableHeader(cols [4]string) {
	pdf := p.pdf
	widths := p.columnWidths()
	aligns := [4]string{"L", "R", "R", "R"}

	pdf.SetFont(fontFamily, "B", 10)
	p.color(colorMuted)
	pdf.SetDrawColor(colorBorder.r, colorBorder.g, colorBorder.b)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], rowHeight, p.tr(col), "B", ln, aligns[i], false, 0, "")
	}
}

func (p *page) table(cols [4]string, rows []Row) {
	pdf := p.pdf
	widths := p.columnWidths()

	p.tableHeader(cols)

	pdf.SetFont(fontFamily, "", 10)
	p.color(colorText)
	pdf.SetDrawColor(colorRowBorder.r, colorRowBorder.g, colorRowBorder.b)

	for _, row := range rows {
		if pdf.GetY()+rowHeight > p.bottomLimit() {
			pdf.AddPage()
			p.tableHeader(cols)
			pdf.SetFont(fontFamily, "", 10)
			p.color(colorText)
			pdf.SetDrawColor(colorRowBorder.r, colorRowBorder.g, colorRowBorder.b)
		}
		pdf.CellFormat(widths[0], rowHeight, p.tr(row.Description), "B", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, row.Quantity, "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, p.tr(row.Rate), "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], rowHeight, p.tr(row.Amount), "B", 1, "R", false, 0, "")
	}

	pdf.Ln(20)
}

func (p *page) totals(lines []TotalLine) {
	pdf := p.pdf
	left, _, _, _ := pdf.GetMargins()
	cw := p.contentWidth()
	x := left + cw/2
	labelW, valueW := cw*0.25, cw*0.25

	for _, line := range lines {
		pdf.SetX(x)
		if line.Grand {
			pdf.SetDrawColor(colorBorder.r, colorBorder.g, colorBorder.b)
			y := pdf.GetY() + 2
			pdf.Line(x, y, x+labelW+valueW, y)
			pdf.Ln(6)
			pdf.SetX(x)
			pdf.SetFont(fontFamily, "B", 14)
			p.color(colorAccent)
			pdf.CellFormat(labelW, rowHeight, p.tr(line.Label), "", 0, "R", false, 0, "")
			pdf.CellFormat(valueW, rowHeight, p.tr(line.Value), "", 1, "R", false, 0, "")
			continue
		}

		pdf.SetFont(fontFamily, "", 10)
		p.color(colorMuted)
		pdf.CellFormat(labelW, lineHeight+2, p.tr(line.Label), "", 0, "R", false, 0, "")
		pdf.SetFont(fontFamily, "B", 10)
		p.color(colorText)
		pdf.CellFormat(valueW, lineHeight+2, p.tr(line.Value), "", 1, "R", false, 0, "")
	}
}

func (p *page) notes(text string) {
	pdf := p.pdf
	pdf.Ln(40)

	pdf.SetFont(fontFamily, "B", 10)
	p.color(colorSection)
	pdf.CellFormat(0, lineHeight, "NOTES", "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	p.color(colorText)
	pdf.MultiCell(0, lineHeight, p.tr(text), "", "L", false)
}

func (p *page) footer(lines []string) {
	pdf := p.pdf
	left, _, _, _ := pdf.GetMargins()
	cw := p.contentWidth()

	pdf.Ln(40)
	if pdf.GetY()+20+float64(len(lines))*12 > p.bottomLimit() {
		pdf.AddPage()
	}

	pdf.SetDrawColor(colorBorder.r, colorBorder.g, colorBorder.b)
	y := pdf.GetY()
	pdf.Line(left, y, left+cw, y)
	pdf.Ln(20)

	pdf.SetFont(fontFamily, "", 8)
	p.color(colorSection)
	for _, line := range lines {
		pdf.CellFormat(0, 12, p.tr(line), "", 1, "C", false, 0, "")
	}
}
