package theme

// Theme identifiers.
const (
	Light    = "light"
	Dark     = "dark"
	Midnight = "midnight"
)

// DefaultThemeID is used when no theme is stored or the stored id is unknown.
const DefaultThemeID = Dark

// DefaultAccentColor is the accent used until the user picks another.
const DefaultAccentColor = "#8B5CF6"

// Palette is the set of named colors a theme resolves to.
type Palette struct {
	Primary          string `json:"primary"`
	Secondary        string `json:"secondary"`
	Background       string `json:"background"`
	Surface          string `json:"surface"`
	Text             string `json:"text"`
	TextSecondary    string `json:"textSecondary"`
	Border           string `json:"border"`
	Accent           string `json:"accent"`
	Success          string `json:"success"`
	Warning          string `json:"warning"`
	Error            string `json:"error"`
	CardBackground   string `json:"cardBackground"`
	HeaderBackground string `json:"headerBackground"`
}

// Theme is a resolved theme: its palette already carries the accent color.
type Theme struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Colors Palette `json:"colors"`
}

// AccentColor is an entry of the accent color catalogue.
type AccentColor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var accentColors = []AccentColor{
	{ID: "purple", Name: "Purple", Color: "#8B5CF6"},
	{ID: "blue", Name: "Blue", Color: "#3B82F6"},
	{ID: "green", Name: "Green", Color: "#10B981"},
	{ID: "orange", Name: "Orange", Color: "#F59E0B"},
	{ID: "pink", Name: "Pink", Color: "#EC4899"},
	{ID: "red", Name: "Red", Color: "#EF4444"},
	{ID: "indigo", Name: "Indigo", Color: "#6366F1"},
	{ID: "teal", Name: "Teal", Color: "#14B8A6"},
}

// AccentColors returns the accent color catalogue.
func AccentColors() []AccentColor {
	out := make([]AccentColor, len(accentColors))
	copy(out, accentColors)
	return out
}

// base palettes; Primary and Accent are filled in by Build.
var bases = []Theme{
	{
		ID:   Light,
		Name: "Light Mode",
		Colors: Palette{
			Secondary:        "#F3F4F6",
			Background:       "#FFFFFF",
			Surface:          "#F9FAFB",
			Text:             "#111827",
			TextSecondary:    "#6B7280",
			Border:           "#E5E7EB",
			Success:          "#10B981",
			Warning:          "#F59E0B",
			Error:            "#EF4444",
			CardBackground:   "#FFFFFF",
			HeaderBackground: "#FFFFFF",
		},
	},
	{
		ID:   Dark,
		Name: "Dark Mode",
		Colors: Palette{
			Secondary:        "#1F2937",
			Background:       "#111827",
			Surface:          "#1F2937",
			Text:             "#F9FAFB",
			TextSecondary:    "#9CA3AF",
			Border:           "#374151",
			Success:          "#10B981",
			Warning:          "#F59E0B",
			Error:            "#EF4444",
			CardBackground:   "#1F2937",
			HeaderBackground: "#111827",
		},
	},
	{
		ID:   Midnight,
		Name: "Midnight",
		Colors: Palette{
			Secondary:        "#0F0F0F",
			Background:       "#000000",
			Surface:          "#0F0F0F",
			Text:             "#FFFFFF",
			TextSecondary:    "#9CA3AF",
			Border:           "#1F1F1F",
			Success:          "#10B981",
			Warning:          "#F59E0B",
			Error:            "#EF4444",
			CardBackground:   "#0F0F0F",
			HeaderBackground: "#000000",
		},
	},
}

// Build returns every known theme with accent substituted into the primary
// and accent slots.
func Build(accent string) []Theme {
	out := make([]Theme, len(bases))
	for i, t := range bases {
		t.Colors.Primary = accent
		t.Colors.Accent = accent
		out[i] = t
	}
	return out
}

// Resolve returns the theme with the given id and accent. Unknown ids resolve
// to DefaultThemeID.
func Resolve(id, accent string) Theme {
	themes := Build(accent)
	var fallback Theme
	for _, t := range themes {
		if t.ID == id {
			return t
		}
		if t.ID == DefaultThemeID {
			fallback = t
		}
	}
	return fallback
}

// Known reports whether id names a theme.
func Known(id string) bool {
	for _, t := range bases {
		if t.ID == id {
			return true
		}
	}
	return false
}
