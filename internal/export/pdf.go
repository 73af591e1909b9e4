package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	indigo    = rgb{99, 102, 241}
	slate900  = rgb{15, 23, 42}
	slate800  = rgb{30, 41, 59}
	slate700  = rgb{51, 65, 85}
	slate600  = rgb{71, 85, 105}
	slate500  = rgb{100, 116, 139}
	slate400  = rgb{148, 163, 184}
	slate300  = rgb{203, 213, 225}
	slate200  = rgb{226, 232, 240}
	slate50   = rgb{248, 250, 252}
	sky500    = rgb{14, 165, 233}
	sky200    = rgb{186, 230, 253}
	sky50     = rgb{240, 249, 255}
	green600  = rgb{22, 163, 74}
	green700  = rgb{21, 128, 61}
	green200  = rgb{187, 247, 208}
	green50   = rgb{240, 253, 244}
	coverTint = rgb{245, 247, 255}
	white     = rgb{255, 255, 255}
)

const fontFamily = "Helvetica"

// pdfMeasurer measures with the real font metrics of the document.
type pdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m *pdfMeasurer) Width(text string, size float64, bold bool) float64 {
	style := ""
	if bold {
		style = "B"
	}
	m.pdf.SetFont(fontFamily, style, size)
	return m.pdf.GetStringWidth(m.tr(text))
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	in  Input
}

// RenderPDF lays out in and writes the PDF to w.
func RenderPDF(w io.Writer, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(fmt.Sprintf("%d Success Blueprint", in.Year), true)
	pdf.SetAuthor(in.UserName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	doc, err := Layout(in, &pdfMeasurer{pdf: pdf, tr: tr})
	if err != nil {
		return err
	}

	r := &renderer{pdf: pdf, tr: tr, in: in}
	for _, page := range doc.Pages {
		pdf.AddPage()
		if page.Cover {
			r.cover()
			continue
		}
		for _, b := range page.Blocks {
			r.block(b)
		}
		r.footer(page.Footer)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func (r *renderer) fill(c rgb)  { r.pdf.SetFillColor(c.r, c.g, c.b) }
func (r *renderer) draw(c rgb)  { r.pdf.SetDrawColor(c.r, c.g, c.b) }
func (r *renderer) color(c rgb) { r.pdf.SetTextColor(c.r, c.g, c.b) }

func (r *renderer) font(style string, size float64, c rgb) {
	r.pdf.SetFont(fontFamily, style, size)
	r.color(c)
}

func (r *renderer) text(x, y float64, s string) {
	r.pdf.Text(x, y, r.tr(s))
}

func (r *renderer) center(y float64, s string) {
	s = r.tr(s)
	r.pdf.Text((PageWidth-r.pdf.GetStringWidth(s))/2, y, s)
}

func (r *renderer) lines(x, y float64, lines []string, size, factor float64) {
	lh := lineHeight(size, factor)
	for i, l := range lines {
		r.text(x, y+float64(i)*lh, l)
	}
}

func (r *renderer) cover() {
	r.fill(coverTint)
	r.pdf.Rect(0, 0, PageWidth, PageHeight, "F")
	r.fill(indigo)
	r.pdf.Rect(0, 0, PageWidth, 15, "F")

	y := 90.0
	r.font("B", 85, indigo)
	r.center(y, fmt.Sprint(r.in.Year))

	y += 30
	r.font("B", 32, slate800)
	r.center(y, "SUCCESS BLUEPRINT")

	y += 18
	r.draw(indigo)
	r.pdf.SetLineWidth(1.5)
	r.pdf.Line(Margin+50, y, PageWidth-Margin-50, y)

	y += 25
	r.font("", 13, slate500)
	r.center(y, "PERSONAL STRATEGY REPORT")

	y += 50
	r.fill(white)
	r.draw(slate300)
	r.pdf.SetLineWidth(0.5)
	r.pdf.RoundedRect(PageWidth/2-75, y, 150, 70, 6, "1234", "FD")

	y += 22
	r.font("B", 9, slate400)
	r.center(y, "PREPARED FOR")
	y += 12
	r.font("B", 19, slate800)
	r.center(y, r.in.UserName)
	y += 12
	r.font("", 10, slate500)
	r.center(y, r.in.UserEmail)

	r.font("", 10, slate400)
	r.center(PageHeight-35, r.in.Date.Format("January 2, 2006"))
}

func (r *renderer) footer(s string) {
	r.font("", 8, rgb{150, 150, 150})
	r.center(PageHeight-10, s)
}

func (r *renderer) block(b Block) {
	switch b.Kind {
	case BlockSummaryTitle:
		r.font("B", 24, slate800)
		r.text(Margin, b.Y, b.Text)
	case BlockFocus:
		r.focus(b)
	case BlockIntro:
		r.font("", sizeIntro, slate700)
		r.lines(Margin, b.Y, b.Lines, sizeIntro, 1.6)
	case BlockRadar:
		r.radar(b.Radar)
	case BlockGoalHeader:
		r.goalHeader(b)
	case BlockSectionLabel:
		r.font("B", sizeLabel, indigo)
		r.text(Margin, b.Y+4, b.Text)
	case BlockTable:
		r.table(b)
	case BlockCheckIn:
		r.checkIn(b)
	}
}

func (r *renderer) focus(b Block) {
	r.fill(sky50)
	r.draw(sky200)
	r.pdf.SetLineWidth(0.5)
	r.pdf.RoundedRect(Margin, b.Y, ContentWidth, b.H, 5, "1234", "FD")

	r.font("B", 11, sky500)
	r.text(Margin+12, b.Y+15, "PRIMARY FOCUS")
	r.font("B", 17, slate900)
	r.text(Margin+12, b.Y+32, string(r.in.Primary))

	secondary := make([]string, len(r.in.Secondary))
	for i, c := range r.in.Secondary {
		secondary[i] = string(c)
	}
	r.font("B", 11, slate500)
	r.text(PageWidth/2+5, b.Y+15, "SUPPORTING AREAS")
	r.font("B", 15, slate700)
	r.text(PageWidth/2+5, b.Y+32, strings.Join(secondary, ", "))
}

func (r *renderer) radar(c *RadarChart) {
	points := func(ps []Point) []fpdf.PointType {
		out := make([]fpdf.PointType, len(ps))
		for i, p := range ps {
			out[i] = fpdf.PointType{X: p.X, Y: p.Y}
		}
		return out
	}

	r.draw(slate200)
	r.pdf.SetLineWidth(0.3)
	for _, ring := range c.Rings {
		r.pdf.Polygon(points(ring), "D")
	}
	for _, a := range c.Axes {
		r.pdf.Line(c.Center.X, c.Center.Y, a.End.X, a.End.Y)
	}

	r.pdf.SetAlpha(0.35, "Normal")
	r.fill(indigo)
	r.pdf.Polygon(points(c.Polygon), "F")
	r.pdf.SetAlpha(1, "Normal")
	r.draw(indigo)
	r.pdf.SetLineWidth(0.8)
	r.pdf.Polygon(points(c.Polygon), "D")

	r.font("B", 8, slate600)
	for _, a := range c.Axes {
		label := fmt.Sprintf("%s (%d)", a.Category, a.Rating)
		w := r.pdf.GetStringWidth(r.tr(label))
		x := a.Label.X - w/2
		r.text(x, a.Label.Y+1, label)
	}
}

func (r *renderer) goalHeader(b Block) {
	r.fill(slate50)
	r.draw(slate200)
	r.pdf.SetLineWidth(0.5)
	r.pdf.RoundedRect(Margin, b.Y, ContentWidth, b.H, 5, "1234", "FD")

	r.fill(indigo)
	r.pdf.RoundedRect(Margin+8, b.Y+8, 35, 10, 5, "1234", "F")
	r.font("B", 7.5, white)
	badge := r.tr(strings.ToUpper(string(b.Category)))
	r.pdf.Text(Margin+25.5-r.pdf.GetStringWidth(badge)/2, b.Y+15, badge)

	r.font("B", sizeGoal, slate800)
	r.lines(Margin+8, b.Y+28, b.Lines, sizeGoal, 1.3)
}

func (r *renderer) table(b Block) {
	t := b.Table
	head := lineHeight(sizeTableHead, 1.15)
	body := lineHeight(sizeTableBody, 1.15)

	x := Margin
	r.fill(slate600)
	if t.LabelColumn {
		r.fill(indigo)
	}
	r.pdf.Rect(Margin, b.Y, ContentWidth, t.HeadH, "F")
	r.font("B", sizeTableHead, white)
	for i, h := range t.Head {
		r.text(x+cellPadding, b.Y+cellPadding+head*0.8, h)
		x += t.Widths[i]
	}

	y := b.Y + t.HeadH
	r.draw(slate200)
	r.pdf.SetLineWidth(0.3)
	for ri, row := range t.Rows {
		if ri%2 == 1 {
			r.fill(slate50)
			r.pdf.Rect(Margin, y, ContentWidth, t.RowHeight[ri], "F")
		}
		r.pdf.Line(Margin, y+t.RowHeight[ri], Margin+ContentWidth, y+t.RowHeight[ri])

		x = Margin
		for ci, cell := range row {
			if ci == 0 && t.LabelColumn {
				r.font("B", sizeTableBody, slate600)
			} else {
				r.font("", sizeTableBody, slate700)
			}
			r.lines(x+cellPadding, y+cellPadding+body*0.8, cell, sizeTableBody, 1.15)
			x += t.Widths[ci]
		}
		y += t.RowHeight[ri]
	}
}

func (r *renderer) checkIn(b Block) {
	r.fill(green50)
	r.draw(green200)
	r.pdf.SetLineWidth(0.5)
	r.pdf.RoundedRect(Margin, b.Y, ContentWidth, b.H, 5, "1234", "FD")

	r.font("B", 10, green600)
	r.text(Margin+10, b.Y+12, b.Text)
	r.font("", sizeTableBody, green700)
	r.lines(Margin+10, b.Y+22, b.Lines, sizeTableBody, 1.5)
}
