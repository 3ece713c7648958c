package render

import (
	"bytes"
	"fmt"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"slidegen/internal/deck"
)

// 16:9 slide geometry in EMU.
const (
	emuPerInch = 914400

	slideWidth  = int64(10.0 * emuPerInch)
	slideHeight = int64(5.625 * emuPerInch)
	margin      = int64(0.4 * emuPerInch)
	columnGap   = int64(0.3 * emuPerInch)
	titleTop    = int64(0.35 * emuPerInch)
	titleHeight = int64(0.8 * emuPerInch)
	bodyTop     = int64(1.3 * emuPerInch)

	fontTitle   = 40
	fontHeading = 28
	fontBody    = 16
	fontLead    = 20
)

type box struct {
	x, y, w, h int64
}

type textRole int

const (
	roleTitle textRole = iota
	roleHeading
	roleLead
	roleBody
)

// PPTX renders the deck as a PowerPoint 2007 presentation. The background
// image, when present, fills every slide; otherwise the theme background
// colour is used.
func PPTX(d *deck.Deck) ([]byte, error) {
	p := ppt.New()
	p.GetDocumentProperties().Title = d.Topic
	p.GetDocumentProperties().Creator = "slidegen"

	for i, s := range d.Slides {
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}
		addBackground(slide, d)
		addSlide(slide, s, d.Theme.Colors)
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("create pptx writer: %w", err)
	}

	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pptx: %w", err)
	}
	return buf.Bytes(), nil
}

func addBackground(slide *ppt.Slide, d *deck.Deck) {
	full := box{0, 0, slideWidth, slideHeight}
	if d.Background != nil && len(d.Background.Data) > 0 {
		addImage(slide, d.Background, full)
		return
	}
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(full.x).SetOffsetY(full.y)
	shape.SetWidth(full.w).SetHeight(full.h)
	shape.SetFill(solidFill(d.Theme.Colors.Background))
}

func addSlide(slide *ppt.Slide, s deck.Slide, colors deck.Colors) {
	content := box{margin, bodyTop, slideWidth - 2*margin, slideHeight - bodyTop - margin}

	switch s.Layout {
	case deck.LayoutTitle:
		addText(slide, s.Title, box{margin, int64(1.6 * emuPerInch), content.w, int64(1.2 * emuPerInch)}, roleTitle, colors.Primary, true)
		addLines(slide, s.Content, box{margin, int64(2.9 * emuPerInch), content.w, int64(1.6 * emuPerInch)}, roleLead, colors.TextLight, "", true)
		return
	case deck.LayoutCentered:
		addText(slide, s.Title, box{margin, titleTop, content.w, titleHeight}, roleHeading, colors.Primary, true)
		addLines(slide, s.Content, content, roleLead, colors.Text, "", true)
		return
	}

	addText(slide, s.Title, box{margin, titleTop, content.w, titleHeight}, roleHeading, colors.Primary, false)
	if s.Image == nil || len(s.Image.Data) == 0 {
		addLines(slide, s.Content, content, roleBody, colors.Text, "• ", false)
		return
	}

	half := (content.w - columnGap) / 2
	left := box{content.x, content.y, half, content.h}
	right := box{content.x + half + columnGap, content.y, half, content.h}

	text, image := left, right
	if s.Layout == deck.LayoutBulletPointsRight || s.Layout == deck.LayoutImageSplit {
		text, image = right, left
	}
	addLines(slide, s.Content, text, roleBody, colors.Text, "• ", false)
	addImage(slide, s.Image, image)
}

func addText(slide *ppt.Slide, text string, b box, role textRole, color string, centered bool) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(b.x).SetOffsetY(b.y)
	shape.SetWidth(b.w).SetHeight(b.h)

	tr := shape.CreateTextRun(text)
	styleFont(tr.GetFont(), role, color)
	if centered {
		alignCenter(shape.GetActiveParagraph())
	}
}

func addLines(slide *ppt.Slide, lines []string, b box, role textRole, color, prefix string, centered bool) {
	if len(lines) == 0 {
		return
	}

	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(b.x).SetOffsetY(b.y)
	shape.SetWidth(b.w).SetHeight(b.h)

	for i, line := range lines {
		if i > 0 {
			shape.CreateParagraph()
		}
		tr := shape.CreateTextRun(prefix + strings.TrimSpace(line))
		styleFont(tr.GetFont(), role, color)
		if centered {
			alignCenter(shape.GetActiveParagraph())
		}
	}
}

func styleFont(font *ppt.Font, role textRole, color string) {
	font.SetColor(ppt.NewColor(argb(color)))
	switch role {
	case roleTitle:
		font.SetSize(fontTitle).SetBold(true)
	case roleHeading:
		font.SetSize(fontHeading).SetBold(true)
	case roleLead:
		font.SetSize(fontLead)
	default:
		font.SetSize(fontBody)
	}
}

func addImage(slide *ppt.Slide, img *deck.Image, b box) {
	shape := slide.CreateDrawingShape()
	shape.SetImageData(img.Data, imageMIMEType(img))
	shape.SetOffsetX(b.x).SetOffsetY(b.y)
	shape.SetWidth(b.w).SetHeight(b.h)
}

func imageMIMEType(img *deck.Image) string {
	if img.MIMEType == "" {
		return "image/png"
	}
	return img.MIMEType
}

func solidFill(hex string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb(hex)))
}

func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

// argb converts a "#RRGGBB" theme colour to the opaque ARGB form GoPPT
// expects. Anything else falls back to black.
func argb(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "FF000000"
	}
	return "FF" + strings.ToUpper(hex)
}
