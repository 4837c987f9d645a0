package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors - warm terminal aesthetic for the Parley brand
var (
	// Brand colors
	colorBrand    = lipgloss.Color("#FF8800") // Amber (from logo)
	colorIndigo   = lipgloss.Color("#6688FF") // Soft indigo accent
	colorBrandDim = lipgloss.Color("#AA5500") // Dimmed amber for subtle accents

	// Sender colors
	colorSelf   = lipgloss.Color("#00FF66") // Bright green for own messages
	colorPeer   = lipgloss.Color("#66AAFF") // Blue for other senders
	colorSystem = lipgloss.Color("#00CCFF") // Cyan for system notices

	// Semantic colors
	colorWarning = lipgloss.Color("#FF6600")
	colorError   = lipgloss.Color("#FF3366")
	colorSuccess = lipgloss.Color("#00FF66")
	colorMuted   = lipgloss.Color("#666688")

	// Backgrounds
	colorBg      = lipgloss.Color("#0A0A10")
	colorBgPanel = lipgloss.Color("#12121C")
	colorBorder  = lipgloss.Color("#2A2A44")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	// Room list - double border for the left rail
	roomListStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBrandDim)

	roomItemStyle = lipgloss.NewStyle().
			Foreground(colorIndigo).
			Padding(0, 1)

	roomItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorBg).
				Background(colorBrand).
				Bold(true).
				Padding(0, 1)

	// Timeline
	timelineStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrandDim)

	senderSelfStyle = lipgloss.NewStyle().
			Foreground(colorSelf).
			Bold(true)

	senderPeerStyle = lipgloss.NewStyle().
			Foreground(colorPeer)

	systemNoticeStyle = lipgloss.NewStyle().
				Foreground(colorSystem).
				Italic(true)

	// Input
	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorIndigo).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorBrand).
				Bold(true)

	// Help overlay
	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBrand).
			Background(colorBgPanel).
			Padding(1, 2).
			Margin(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorIndigo).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Side panel
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Background(colorBgPanel).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorIndigo).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	dimmedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)
)

// SenderStyle returns the style for a message sender.
func SenderStyle(sender, selfID string) lipgloss.Style {
	switch sender {
	case selfID:
		return senderSelfStyle
	case "":
		return systemNoticeStyle
	default:
		return senderPeerStyle
	}
}

// renderSectionTitle renders a section title that spans the full width.
func renderSectionTitle(title string, width int) string {
	// Format: ◆── TITLE ──◆ with dashes filling the remaining space
	titleWithSpaces := " " + title + " "
	titleDisplayWidth := lipgloss.Width(titleWithSpaces)
	availableWidth := width - titleDisplayWidth - 4
	if availableWidth < 2 {
		availableWidth = 2
	}
	leftDashes := availableWidth / 2
	rightDashes := availableWidth - leftDashes

	line := "◆─" + strings.Repeat("─", leftDashes) + titleWithSpaces + strings.Repeat("─", rightDashes) + "─◆"
	return panelTitleStyle.Width(width).Render(line)
}

// truncateToWidth truncates a string to fit within maxWidth display columns.
// Uses rune-aware iteration to avoid cutting multi-byte characters.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	currentWidth := 0
	for i, r := range s {
		charWidth := lipgloss.Width(string(r))
		if currentWidth+charWidth > maxWidth {
			return s[:i]
		}
		currentWidth += charWidth
	}
	return s
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return truncateToWidth(s, maxWidth)
	}
	return truncateToWidth(s, maxWidth-3) + "..."
}

func formatSenderLabel(userID, displayName string) string {
	const maxLabelWidth = 14
	if displayName != "" {
		return truncateWithEllipsis(displayName, maxLabelWidth)
	}
	return truncateWithEllipsis(userID, maxLabelWidth)
}
