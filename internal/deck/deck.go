package deck

import (
	"encoding/base64"
	"time"
	"unicode/utf8"
)

const (
	StatusIdle             Status = "idle"
	StatusGeneratingPlan   Status = "generating_plan"
	StatusGeneratingImages Status = "generating_images"
	StatusReady            Status = "ready"
	StatusError            Status = "error"
)

type Status string

// Generating reports whether a run is in progress.
func (s Status) Generating() bool {
	return s == StatusGeneratingPlan || s == StatusGeneratingImages
}

const (
	LayoutTitle             Layout = "title"
	LayoutBulletPointsLeft  Layout = "bullet_points_left"
	LayoutBulletPointsRight Layout = "bullet_points_right"
	LayoutCentered          Layout = "centered"
	LayoutImageSplit        Layout = "image_split"
)

type Layout string

var Layouts = []Layout{
	LayoutTitle,
	LayoutBulletPointsLeft,
	LayoutBulletPointsRight,
	LayoutCentered,
	LayoutImageSplit,
}

// ParseLayout maps a planner-provided layout name onto a known layout.
// Unknown names fall back to bullet points on the left.
func ParseLayout(s string) Layout {
	for _, l := range Layouts {
		if string(l) == s {
			return l
		}
	}
	return LayoutBulletPointsLeft
}

type Image struct {
	Data     []byte
	MIMEType string
}

func (img *Image) DataURL() string {
	if img == nil || len(img.Data) == 0 {
		return ""
	}
	return "data:" + img.mimeType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Ext returns the file extension matching the image MIME type.
func (img *Image) Ext() string {
	switch img.mimeType() {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func (img *Image) mimeType() string {
	if img.MIMEType == "" {
		return "image/png"
	}
	return img.MIMEType
}

func (img *Image) Clone() *Image {
	if img == nil {
		return nil
	}
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return &Image{Data: data, MIMEType: img.MIMEType}
}

type Slide struct {
	Title       string
	Content     []string
	ImagePrompt string
	Image       *Image
	Layout      Layout
}

// Qualifies reports whether the slide's image prompt is long enough to be
// sent to image generation. Length is counted in characters.
func (s Slide) Qualifies(minPromptLength int) bool {
	return utf8.RuneCountInString(s.ImagePrompt) > minPromptLength
}

func (s Slide) Clone() Slide {
	out := s
	out.Content = append([]string(nil), s.Content...)
	out.Image = s.Image.Clone()
	return out
}

func CloneSlides(slides []Slide) []Slide {
	if slides == nil {
		return nil
	}
	out := make([]Slide, len(slides))
	for i, s := range slides {
		out[i] = s.Clone()
	}
	return out
}

type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type Usage struct {
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
}

// Plan is the planner's answer before any images exist.
type Plan struct {
	ThemeID          string
	BackgroundPrompt string
	Slides           []Slide
	Usage            *Usage
}

type Deck struct {
	Topic      string
	Language   string
	Theme      Theme
	Slides     []Slide
	Background *Image
	Usage      *Usage
	CreatedAt  time.Time
}

func (d *Deck) ImageCount() int {
	n := 0
	for _, s := range d.Slides {
		if s.Image != nil {
			n++
		}
	}
	return n
}
