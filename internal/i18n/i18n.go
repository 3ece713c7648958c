// Package i18n holds the display strings of the user interface.
package i18n

const (
	Uzbek   Language = "uz"
	English Language = "en"
	Russian Language = "ru"
)

// Default is the language used when none or an unknown one is requested.
const Default = Uzbek

type Language string

type Strings struct {
	HeaderTitle      string
	ErrorTitle       string
	RetryButton      string
	GeneratingPlan   string
	GeneratingImages string
	Generate         string
	Restart          string
	Download         string
	TopicLabel       string
	SlideCountLabel  string
	PlanCountLabel   string
	LanguageLabel    string
	AdditionalInfo   string
}

var names = map[Language]string{
	Uzbek:   "O'zbekcha",
	English: "English",
	Russian: "Русский",
}

var promptNames = map[Language]string{
	Uzbek:   "Uzbek",
	English: "English",
	Russian: "Russian",
}

var translations = map[Language]Strings{
	Uzbek:   uzbek,
	English: english,
	Russian: russian,
}

func Languages() []Language {
	return []Language{Uzbek, English, Russian}
}

func Supported(lang string) bool {
	_, ok := translations[Language(lang)]
	return ok
}

// For returns the strings for lang, falling back to Default.
func For(lang string) Strings {
	if s, ok := translations[Language(lang)]; ok {
		return s
	}
	return translations[Default]
}

// Name returns the language's name in its own script.
func Name(lang string) string {
	if n, ok := names[Language(lang)]; ok {
		return n
	}
	return names[Default]
}

// PromptName returns the English name of the language, used inside prompts.
func PromptName(lang string) string {
	if n, ok := promptNames[Language(lang)]; ok {
		return n
	}
	return promptNames[Default]
}
