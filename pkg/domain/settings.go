package domain

import "fmt"

// AccentColor names one of the supported UI accent palettes.
type AccentColor string

// Supported accent colors.
const (
	AccentBlue    AccentColor = "blue"
	AccentEmerald AccentColor = "emerald"
	AccentPurple  AccentColor = "purple"
	AccentRose    AccentColor = "rose"
	AccentTeal    AccentColor = "teal"
	AccentViolet  AccentColor = "violet"
	AccentAmber   AccentColor = "amber"
	AccentOrange  AccentColor = "orange"
	AccentPink    AccentColor = "pink"
)

// AccentColors lists the supported accent colors.
var AccentColors = []AccentColor{
	AccentBlue, AccentEmerald, AccentPurple, AccentRose, AccentTeal,
	AccentViolet, AccentAmber, AccentOrange, AccentPink,
}

// FontFamily names one of the supported UI font stacks.
type FontFamily string

// Supported font families.
const (
	FontSans       FontFamily = "sans"
	FontSerif      FontFamily = "serif"
	FontMono       FontFamily = "mono"
	FontMontserrat FontFamily = "montserrat"
)

// FontFamilies lists the supported font families.
var FontFamilies = []FontFamily{FontSans, FontSerif, FontMono, FontMontserrat}

// Settings holds process-wide display preferences.
type Settings struct {
	DarkMode    bool        `json:"darkMode"`
	AccentColor AccentColor `json:"accentColor"`
	FontFamily  FontFamily  `json:"fontFamily"`
}

// DefaultSettings returns the preferences used before anything is stored.
func DefaultSettings() Settings {
	return Settings{DarkMode: false, AccentColor: AccentBlue, FontFamily: FontSans}
}

// Validate rejects values outside the supported palettes.
func (s Settings) Validate() error {
	if !containsAccent(s.AccentColor) {
		return fmt.Errorf("unsupported accent color %q", s.AccentColor)
	}
	if !containsFont(s.FontFamily) {
		return fmt.Errorf("unsupported font family %q", s.FontFamily)
	}
	return nil
}

func containsAccent(c AccentColor) bool {
	for _, known := range AccentColors {
		if known == c {
			return true
		}
	}
	return false
}

func containsFont(f FontFamily) bool {
	for _, known := range FontFamilies {
		if known == f {
			return true
		}
	}
	return false
}
