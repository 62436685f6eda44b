// Package sheet renders the roster as a printable combat sheet (PDF) in the
// same parchment style the table uses on paper.
package sheet

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strings"

	"bastion/internal/game"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	rowH      = 34.0
	headerH   = 16.0
	portrait  = 26.0
	fontSize  = 8
	titleSize = 16
	notesMax  = 60
)

// notesLines lines of notesLine points fit inside one row.
const (
	notesLine  = 9.0
	notesLines = 3
)

type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"", portrait + 6, "C"},
	{"Name", 112, "L"},
	{"Status", 70, "L"},
	{"Vigor", 40, "C"},
	{"Clarity", 40, "C"},
	{"Spirit", 40, "C"},
	{"Guard", 40, "C"},
	{"Armor", 32, "C"},
	{"Cond.", 40, "C"},
	{"Notes", 75, "L"},
}

// Generate returns PDF bytes listing chars in the order given, followed by
// roster totals. An empty roster still yields a one-page sheet.
func Generate(title string, chars []*game.Character) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	usable := float64(pageH - 2*margin - 80 - 60)
	rowsPerPage := int((usable - headerH) / rowH)
	pages := 1
	if len(chars) > rowsPerPage {
		pages = int(math.Ceil(float64(len(chars)) / float64(rowsPerPage)))
	}

	for p := 0; p < pages; p++ {
		newPage(pdf, tr(title), p+1, pages)
		y := float64(margin) + 72
		drawHeader(pdf, y)
		y += headerH

		if len(chars) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetXY(margin+10, y+10)
			pdf.CellFormat(pageW-2*margin-20, 14, "No characters", "", 0, "C", false, 0, "")
		}

		start := p * rowsPerPage
		end := min(start+rowsPerPage, len(chars))
		for i := start; i < end; i++ {
			drawRow(pdf, tr, chars[i], y, i)
			y += rowH
		}

		if p == pages-1 {
			drawSummary(pdf, game.Summarize(chars), y+12)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newPage(pdf *gofpdf.Fpdf, title string, page, pages int) {
	pdf.AddPage()

	// Parchment background
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawWavyBorder(pdf)

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+10, margin+12)
	pdf.CellFormat(pageW-2*margin-20, 18, "Combat Sheet", "", 0, "L", false, 0, "")
	if title != "" {
		pdf.SetFont("Helvetica", "", fontSize+1)
		pdf.SetXY(margin+10, margin+32)
		pdf.CellFormat(pageW-2*margin-20, 12, title, "", 0, "L", false, 0, "")
	}
	if pages > 1 {
		pdf.SetFont("Helvetica", "I", fontSize)
		pdf.SetXY(pageW-margin-110, margin+14)
		pdf.CellFormat(100, 10, fmt.Sprintf("Page %d of %d", page, pages), "", 0, "R", false, 0, "")
	}
}

func drawHeader(pdf *gofpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetFillColor(220, 200, 160)
	x := float64(margin) + 4
	for _, col := range columns {
		pdf.SetXY(x, y)
		pdf.CellFormat(col.width, headerH, col.title, "B", 0, col.align, true, 0, "")
		x += col.width
	}
}

func drawRow(pdf *gofpdf.Fpdf, tr func(string) string, c *game.Character, y float64, idx int) {
	if idx%2 == 1 {
		pdf.SetFillColor(238, 225, 195)
		pdf.Rect(margin+4, y, rowWidth(), rowH, "F")
	}
	if !c.Alive {
		pdf.SetTextColor(150, 30, 30)
	} else {
		pdf.SetTextColor(40, 25, 15)
	}

	x := float64(margin) + 4
	drawPortrait(pdf, tr, c, x+3, y+(rowH-portrait)/2, idx)
	x += columns[0].width

	cells := []string{
		tr(truncate(c.Name, 24)),
		string(game.Status(c)),
		fmt.Sprintf("%d/%d", c.Vigor, c.MaxVigor),
		fmt.Sprintf("%d/%d", c.Clarity, c.MaxClarity),
		fmt.Sprintf("%d/%d", c.Spirit, c.MaxSpirit),
		fmt.Sprintf("%d/%d", c.Guard, c.MaxGuard),
		fmt.Sprintf("%d", c.Armor),
		conditionLetters(c),
		tr(truncate(strings.Join(strings.Fields(c.Notes), " "), notesMax)),
	}
	for i, text := range cells {
		col := columns[i+1]
		style := ""
		if i == 0 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, fontSize)
		pdf.SetXY(x, y)
		if col.title == "Notes" {
			for n, line := range clipLines(pdf, text, col.width, notesLines) {
				pdf.SetXY(x, y+4+float64(n)*notesLine)
				pdf.CellFormat(col.width, notesLine, line, "", 0, col.align, false, 0, "")
			}
		} else {
			pdf.CellFormat(col.width, rowH, text, "", 0, col.align, false, 0, "")
		}
		x += col.width
	}

	pdf.SetDrawColor(180, 150, 110)
	pdf.SetLineWidth(0.5)
	pdf.Line(margin+4, y+rowH, margin+4+rowWidth(), y+rowH)
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
}

// drawPortrait embeds the character's uploaded image, or a framed initial
// when there is none or gofpdf cannot read it.
func drawPortrait(pdf *gofpdf.Fpdf, tr func(string) string, c *game.Character, x, y float64, idx int) {
	if imgType := pdfImageType(c.ProfileImage); imgType != "" {
		name := fmt.Sprintf("portrait-%d", idx)
		opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.ProfileImage))
		if pdf.Ok() {
			pdf.ImageOptions(name, x, y, portrait, portrait, false, opts, 0, "")
			return
		}
		pdf.ClearError()
	}

	pdf.SetDrawColor(80, 50, 30)
	pdf.Rect(x, y, portrait, portrait, "D")
	initial := "?"
	if c.Name != "" {
		initial = strings.ToUpper(string([]rune(c.Name)[:1]))
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(x, y)
	pdf.CellFormat(portrait, portrait, tr(initial), "", 0, "C", false, 0, "")
}

func drawSummary(pdf *gofpdf.Fpdf, s game.Summary, y float64) {
	pdf.SetFont("Helvetica", "B", fontSize+1)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetXY(margin+10, y)
	pdf.CellFormat(rowWidth(), 12, fmt.Sprintf("%d character(s): %d alive, %d slain", s.Total, s.Alive, s.Dead), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetX(margin + 10)
	pdf.CellFormat(rowWidth(), 11, fmt.Sprintf(
		"Wounded %d  -  Mortally wounded %d  -  Impaired %d  -  Fatigued %d  -  Scarred %d",
		s.Wounded, s.MortallyWounded, s.Impaired, s.Fatigued, s.Scarred,
	), "", 1, "L", false, 0, "")
	pdf.SetX(margin + 10)
	pdf.SetFont("Helvetica", "I", fontSize-1)
	pdf.CellFormat(rowWidth(), 10, "Cond.: W wounded, M mortally wounded, I impaired, F fatigued, S scarred", "", 0, "L", false, 0, "")
}

func conditionLetters(c *game.Character) string {
	var b strings.Builder
	for _, f := range []struct {
		on     bool
		letter byte
	}{
		{c.Wounded, 'W'},
		{c.MortallyWounded, 'M'},
		{c.Impaired, 'I'},
		{c.Fatigued, 'F'},
		{c.Scarred, 'S'},
	} {
		if f.on {
			b.WriteByte(f.letter)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func pdfImageType(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	switch http.DetectContentType(b) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}

// clipLines wraps text to width and keeps at most maxLines lines, marking
// the cut with an ellipsis.
func clipLines(pdf *gofpdf.Fpdf, text string, width float64, maxLines int) []string {
	if text == "" {
		return nil
	}
	raw := pdf.SplitLines([]byte(text), width)
	lines := make([]string, 0, min(len(raw), maxLines))
	for i, l := range raw {
		if i == maxLines {
			break
		}
		lines = append(lines, string(l))
	}
	if len(raw) > maxLines {
		last := []rune(lines[maxLines-1])
		for len(last) > 0 && pdf.GetStringWidth(string(last)+"...") > width {
			last = last[:len(last)-1]
		}
		lines[maxLines-1] = string(last) + "..."
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func rowWidth() float64 {
	w := 0.0
	for _, col := range columns {
		w += col.width
	}
	return w
}

// drawWavyBorder draws the tattered parchment edge around the page.
func drawWavyBorder(pdf *gofpdf.Fpdf) {
	pts := wavyRectPoints(margin/2, margin/2, pageW-margin, pageH-margin, 14, 3)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// wavyRectPoints returns polygon points for a rectangle with sinusoidal wobble on each side.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	pts := make([]gofpdf.PointType, 0, steps*4+4)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + t*w + amp*math.Sin(float64(i)*0.7),
			Y: y + amp*math.Cos(float64(i)*0.5),
		})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + w + amp*math.Sin(float64(i)*0.6),
			Y: y + t*h + amp*math.Cos(float64(i)*0.4),
		})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + w - t*w + amp*math.Sin(float64(i)*0.8),
			Y: y + h + amp*math.Cos(float64(i)*0.3),
		})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + amp*math.Sin(float64(i)*0.5),
			Y: y + h - t*h + amp*math.Cos(float64(i)*0.6),
		})
	}
	return pts
}
