package concierge

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg    int // Guest message accent
	ToolCall   int // Tool call header
	ToolResult int // Tool result preview
	Error      int // Failures and aborted episodes
	Success    int // Successful tool results
	Muted      int // Status bar, placeholders
	Accent     int // Headings, restaurant name
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:    4,
		ToolCall:   3,
		ToolResult: 8,
		Error:      1,
		Success:    2,
		Muted:      8,
		Accent:     5,
	}
}
