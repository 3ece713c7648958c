package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const starterConfig = `planner:
  provider: %s

gemini:
  model: gemini-2.5-flash
  image_model: gemini-2.5-flash-image
  daily_limit: 0

groq:
  model: llama-3.3-70b-versatile

deepseek:
  model: deepseek-chat

generation:
  min_prompt_length: 5
  slide_count: 5
  plan_count: 3
  language: %s

server:
  addr: 127.0.0.1:8080
  open_browser: false

output:
  dir: ./output

gcs:
  enabled: %t
  prefix: decks
`

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Slidegen",
	Long:  `Configure API keys, create the output directory and write a starter config.yaml.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupAnswers struct {
	env      map[string]string
	provider string
	language string
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🖼  Slidegen Setup"))

	answers := &setupAnswers{env: make(map[string]string), provider: "gemini", language: "uz"}

	steps := []struct {
		name string
		fn   func(*setupAnswers) error
	}{
		{"Creating directories", createDirectories},
		{"Configuring environment", configureEnv},
		{"Writing config", writeConfigFile},
	}

	for _, step := range steps {
		if err := step.fn(answers); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	printNextSteps()
	return nil
}

func createDirectories(_ *setupAnswers) error {
	if err := os.MkdirAll("output", 0755); err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureEnv(answers *setupAnswers) error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	if err := configureGCP(answers.env); err != nil {
		return err
	}

	if err := configureKeys(answers); err != nil {
		return err
	}

	return writeEnvFile(answers.env)
}

func configureGCP(env map[string]string) error {
	var setupGCP bool
	if err := huh.NewConfirm().
		Title("Setup Google Cloud?").
		Description("Optional: Secret Manager for the Gemini key and Cloud Storage for exports").
		Value(&setupGCP).
		Run(); err != nil {
		return err
	}

	if !setupGCP {
		return nil
	}

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
		return nil
	}

	project, err := getOrSelectGCPProject()
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("GCP setup skipped: %v", err)))
		return nil
	}
	env["GOOGLE_CLOUD_PROJECT"] = project

	if err := enableGCPAPIs(project); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
	}

	var bucket string
	if err := huh.NewInput().
		Title("Cloud Storage bucket for exported decks").
		Description("Leave empty to export to the local output directory").
		Value(&bucket).
		Run(); err != nil {
		return err
	}
	if bucket = strings.TrimSpace(bucket); bucket != "" {
		env["GCS_BUCKET"] = bucket
	}
	return nil
}

func getOrSelectGCPProject() (string, error) {
	existing := getActiveProject()

	var choice string
	var options []huh.Option[string]
	if existing != "" {
		options = append(options, huh.NewOption(fmt.Sprintf("Use current: %s", existing), existing))
	}
	options = append(options, huh.NewOption("Enter project ID manually", "manual"))

	if err := huh.NewSelect[string]().
		Title("Google Cloud Project").
		Options(options...).
		Value(&choice).
		Run(); err != nil {
		return "", err
	}

	if choice != "manual" {
		return choice, nil
	}

	var projectID string
	if err := huh.NewInput().
		Title("Project ID").
		Value(&projectID).
		Validate(required("Project ID")).
		Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(projectID), nil
}

func getActiveProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string) error {
	apis := []string{
		"generativelanguage.googleapis.com",
		"secretmanager.googleapis.com",
		"storage.googleapis.com",
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func configureKeys(answers *setupAnswers) error {
	var geminiKey, groqKey, deepseekKey string
	_, hasProject := answers.env["GOOGLE_CLOUD_PROJECT"]

	geminiInput := huh.NewInput().
		Title("Gemini API Key").
		Description("https://aistudio.google.com/apikey").
		EchoMode(huh.EchoModePassword).
		Value(&geminiKey)
	if !hasProject {
		geminiInput = geminiInput.Validate(required("Gemini API Key"))
	} else {
		geminiInput = geminiInput.Description("Leave empty to read it from Secret Manager (gemini-api-key)")
	}

	form := huh.NewForm(
		huh.NewGroup(
			geminiInput,
			huh.NewSelect[string]().
				Title("Planner").
				Options(
					huh.NewOption("Gemini", "gemini"),
					huh.NewOption("Groq", "groq"),
					huh.NewOption("DeepSeek", "deepseek"),
				).
				Value(&answers.provider),
			huh.NewSelect[string]().
				Title("Default deck language").
				Options(
					huh.NewOption("O'zbekcha", "uz"),
					huh.NewOption("English", "en"),
					huh.NewOption("Русский", "ru"),
				).
				Value(&answers.language),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("GROQ API Key").
				Description("https://console.groq.com/keys").
				EchoMode(huh.EchoModePassword).
				Value(&groqKey).
				Validate(func(s string) error {
					if answers.provider == "groq" && strings.TrimSpace(s) == "" {
						return fmt.Errorf("GROQ API Key is required for the groq planner")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return answers.provider != "groq" }),
		huh.NewGroup(
			huh.NewInput().
				Title("DeepSeek API Key").
				Description("https://platform.deepseek.com/api_keys").
				EchoMode(huh.EchoModePassword).
				Value(&deepseekKey).
				Validate(required("DeepSeek API Key")),
		).WithHideFunc(func() bool { return answers.provider != "deepseek" }),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if geminiKey = strings.TrimSpace(geminiKey); geminiKey != "" {
		answers.env["GEMINI_API_KEY"] = geminiKey
	}
	if groqKey = strings.TrimSpace(groqKey); groqKey != "" {
		answers.env["GROQ_API_KEY"] = groqKey
	}
	if deepseekKey = strings.TrimSpace(deepseekKey); deepseekKey != "" {
		answers.env["DEEPSEEK_API_KEY"] = deepseekKey
	}
	return nil
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GOOGLE_CLOUD_PROJECT",
		"GEMINI_API_KEY",
		"GROQ_API_KEY",
		"DEEPSEEK_API_KEY",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	return nil
}

func writeConfigFile(answers *setupAnswers) error {
	if _, err := os.Stat("config.yaml"); err == nil {
		fmt.Println(infoStyle.Render("Kept existing config.yaml"))
		return nil
	}

	_, useGCS := answers.env["GCS_BUCKET"]
	content := fmt.Sprintf(starterConfig, answers.provider, answers.language, useGCS)
	if err := os.WriteFile("config.yaml", []byte(content), 0644); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Created config.yaml"))
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check your setup: slidegen status")
	fmt.Println("  2. Generate a deck: slidegen generate -t \"your topic\" --preview")
	fmt.Println("  3. Or open the web UI: slidegen serve --open")
	fmt.Println("  4. Browse exported decks: slidegen view")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
