package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/feedwatch/internal/store"
)

// wrapText wraps text to the specified width, breaking at word boundaries when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 70
	}

	var result strings.Builder
	var line strings.Builder
	lineLen := 0

	words := strings.Fields(text)
	for i, word := range words {
		wordLen := len(word)

		// If adding this word would exceed width, start a new line
		if lineLen > 0 && lineLen+1+wordLen > width {
			result.WriteString(line.String())
			result.WriteString("\n")
			line.Reset()
			lineLen = 0
		}

		// Add space before word if not at start of line
		if lineLen > 0 {
			line.WriteString(" ")
			lineLen++
		}

		line.WriteString(word)
		lineLen += wordLen

		// Write the last line
		if i == len(words)-1 {
			result.WriteString(line.String())
		}
	}

	return result.String()
}

// FormatCompactListItem formats a single result in compact list format
// Example: " 1. [launch] 2026-08-30T10:12:00Z  SpaceX Launch Update"
func FormatCompactListItem(index int, r store.Result) string {
	title := r.Title
	dateISO := r.PublishedAt.Format(time.RFC3339)

	// Truncate title if too long (120 char width total)
	const maxTitleLength = 70
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength-3] + "..."
	}

	return fmt.Sprintf("%2d. [%s] %s  %s", index+1, r.MatchedKeywords, dateISO, title)
}

// FormatDetailedResult formats a single result with all metadata
func FormatDetailedResult(r store.Result) string {
	var b strings.Builder

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")
	b.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
	b.WriteString(fmt.Sprintf("Link: %s\n", r.Link))
	b.WriteString(fmt.Sprintf("Matched keywords: %s\n", r.MatchedKeywords))
	b.WriteString(fmt.Sprintf("Feed ID: %d\n", r.FeedID))

	if !r.PublishedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Published: %s\n", formatTimeAgo(r.PublishedAt)))
	}
	b.WriteString(fmt.Sprintf("Processed: %s\n", formatTimeAgo(r.ProcessedAt)))

	if r.Summary != "" {
		// Word-wrap the summary for readability
		wrapped := wrapText(r.Summary, 70)
		b.WriteString(fmt.Sprintf("\nSummary:\n%s\n", wrapped))
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

// formatTimeAgo formats a time.Time as a human-readable "X ago" string
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
