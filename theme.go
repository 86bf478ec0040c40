package trickle

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Prompt    int // user prompt accent
	Reasoning int // reasoning summary text
	Error     int // error messages
	Success   int // completion indicators
	Muted     int // spinner, usage line, placeholders
	Accent    int // headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Prompt:    4,
		Reasoning: 8,
		Error:     1,
		Success:   2,
		Muted:     8,
		Accent:    5,
	}
}
