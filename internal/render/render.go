package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"slidegen/internal/deck"
)

const slideSeparator = "\n\n---\n\n"

// Options controls how images are referenced from the markdown.
type Options struct {
	// ImageRef returns the path of the image for slide i, or "" when the
	// slide has none to reference.
	ImageRef func(i int) string
}

// Markdown renders the deck as markdown with one slide per
// "---"-separated section.
func Markdown(d *deck.Deck, opts Options) string {
	return strings.Join(Slides(d, opts), slideSeparator) + "\n"
}

// Slides renders each slide as its own markdown section.
func Slides(d *deck.Deck, opts Options) []string {
	sections := make([]string, 0, len(d.Slides))
	for i, s := range d.Slides {
		var ref string
		if opts.ImageRef != nil && s.Image != nil {
			ref = opts.ImageRef(i)
		}
		sections = append(sections, slideMarkdown(s, ref))
	}
	return sections
}

func slideMarkdown(s deck.Slide, imageRef string) string {
	var sb strings.Builder

	if s.Layout == deck.LayoutTitle {
		sb.WriteString("# " + s.Title)
	} else {
		sb.WriteString("## " + s.Title)
	}

	if len(s.Content) > 0 {
		sb.WriteString("\n")
		for _, c := range s.Content {
			if s.Layout == deck.LayoutCentered || s.Layout == deck.LayoutTitle {
				sb.WriteString("\n" + c + "\n")
			} else {
				sb.WriteString("\n- " + c)
			}
		}
	}

	if imageRef != "" {
		fmt.Fprintf(&sb, "\n\n![%s](%s)", s.Title, imageRef)
	}
	return sb.String()
}

// Terminal renders the deck for a terminal of the given width with a header
// coloured by the deck theme.
func Terminal(d *deck.Deck, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	body, err := r.Render(Markdown(d, Options{ImageRef: func(i int) string {
		return fmt.Sprintf("slide %d image", i+1)
	}}))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return Header(d, width) + "\n" + body, nil
}

// Header renders the deck title bar.
func Header(d *deck.Deck, width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(d.Theme.Colors.Primary)).
		Render(d.Topic)

	meta := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.Theme.Colors.TextLight)).
		Render(fmt.Sprintf("%d slides · %d images · %s", len(d.Slides), d.ImageCount(), d.Theme.Name))

	return lipgloss.NewStyle().
		Width(width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color(d.Theme.Colors.Accent)).
		Render(title + "\n" + meta)
}
