package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed default.yaml
var defaultPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Plan   PlanPrompts   `yaml:"plan"`
	Image  ImagePrompts  `yaml:"image"`
}

type SystemPrompts struct {
	Planner string `yaml:"planner"`
	Image   string `yaml:"image"`
}

type PlanPrompts struct {
	Generate string `yaml:"generate"`
}

type ImagePrompts struct {
	Slide      string `yaml:"slide"`
	Background string `yaml:"background"`
}

type PlanParams struct {
	Topic          string
	SlideCount     int
	PlanCount      int
	LanguageName   string
	AdditionalInfo string
	Themes         []string
	Layouts        []string
}

type ImageParams struct {
	Prompt string
}

// Load reads prompts.yaml from the working directory and falls back to the
// built-in prompts when the file does not exist.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return p, err
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parse(data)
}

func Default() (*Prompts, error) {
	return parse(defaultPrompts)
}

func parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return &p, nil
}

func (p *Prompts) RenderPlan(params PlanParams) (string, error) {
	return render(p.Plan.Generate, params)
}

func (p *Prompts) RenderSlideImage(params ImageParams) (string, error) {
	return render(p.Image.Slide, params)
}

func (p *Prompts) RenderBackgroundImage(params ImageParams) (string, error) {
	return render(p.Image.Background, params)
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Funcs(funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
