package deck

const DefaultThemeID = "modern_blue"

type Colors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
	TextLight  string `json:"text_light"`
}

type Theme struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Colors Colors `json:"colors"`
	Font   string `json:"font"`
}

var themes = []Theme{
	{
		ID:   "modern_blue",
		Name: "Modern Blue",
		Colors: Colors{
			Primary:    "#1E40AF",
			Secondary:  "#3B82F6",
			Accent:     "#F59E0B",
			Background: "#F8FAFC",
			Text:       "#0F172A",
			TextLight:  "#64748B",
		},
		Font: "Inter",
	},
	{
		ID:   "elegant_dark",
		Name: "Elegant Dark",
		Colors: Colors{
			Primary:    "#E2E8F0",
			Secondary:  "#94A3B8",
			Accent:     "#D4AF37",
			Background: "#0F172A",
			Text:       "#F8FAFC",
			TextLight:  "#CBD5E1",
		},
		Font: "Playfair Display",
	},
	{
		ID:   "nature_green",
		Name: "Nature Green",
		Colors: Colors{
			Primary:    "#166534",
			Secondary:  "#22C55E",
			Accent:     "#A16207",
			Background: "#F0FDF4",
			Text:       "#14532D",
			TextLight:  "#4D7C0F",
		},
		Font: "Merriweather",
	},
	{
		ID:   "sunset_orange",
		Name: "Sunset Orange",
		Colors: Colors{
			Primary:    "#C2410C",
			Secondary:  "#FB923C",
			Accent:     "#BE185D",
			Background: "#FFF7ED",
			Text:       "#431407",
			TextLight:  "#9A3412",
		},
		Font: "Poppins",
	},
	{
		ID:   "minimal_gray",
		Name: "Minimal Gray",
		Colors: Colors{
			Primary:    "#18181B",
			Secondary:  "#52525B",
			Accent:     "#2563EB",
			Background: "#FFFFFF",
			Text:       "#18181B",
			TextLight:  "#71717A",
		},
		Font: "Helvetica",
	},
	{
		ID:   "royal_purple",
		Name: "Royal Purple",
		Colors: Colors{
			Primary:    "#6B21A8",
			Secondary:  "#A855F7",
			Accent:     "#FACC15",
			Background: "#FAF5FF",
			Text:       "#3B0764",
			TextLight:  "#7E22CE",
		},
		Font: "Montserrat",
	},
}

var themesByID = func() map[string]Theme {
	m := make(map[string]Theme, len(themes))
	for _, t := range themes {
		m[t.ID] = t
	}
	return m
}()

// LookupTheme returns the theme with the given id, or the default theme.
func LookupTheme(id string) Theme {
	if t, ok := themesByID[id]; ok {
		return t
	}
	return themesByID[DefaultThemeID]
}

func ThemeIDs() []string {
	ids := make([]string, len(themes))
	for i, t := range themes {
		ids[i] = t.ID
	}
	return ids
}
