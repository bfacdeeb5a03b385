package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// MarkdownFormatter renders a Summary as a markdown table.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	ok, failed := s.Counts()

	b.WriteString("# Batch Summary\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", s.GeneratedAt.Format(time.RFC3339))
	if s.Source != "" {
		fmt.Fprintf(&b, "- Source: `%s`\n", s.Source)
	}
	fmt.Fprintf(&b, "- Videos: %d succeeded, %d failed\n", ok, failed)
	fmt.Fprintf(&b, "- Total time: %s\n\n", s.TotalElapsed().Round(time.Millisecond))

	if len(s.Entries) == 0 {
		b.WriteString("No specs were processed.\n")
		return b.String()
	}

	b.WriteString("| # | Title | Template | Duration | Size | Resolution | Audio | Time | Status |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for i, e := range s.Entries {
		size, res, audio := "-", "-", "-"
		if v := e.Validation; v != nil {
			size = formatBytes(v.FileSize)
			res = fmt.Sprintf("%dx%d", v.Width, v.Height)
			audio = yesNo(v.HasAudio)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %ds | %s | %s | %s | %s | %s |\n",
			i+1, escape(e.Title), e.Template, e.DurationSeconds, size, res, audio,
			e.Elapsed.Round(time.Millisecond), status(e))
	}

	var failures []Entry
	for _, e := range s.Entries {
		if e.Err != nil {
			failures = append(failures, e)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, e := range failures {
			fmt.Fprintf(&b, "- **%s**: %s\n", escape(e.Title), e.Err)
		}
	}
	return b.String()
}

func status(e Entry) string {
	switch {
	case e.Err != nil:
		return "FAILED"
	case e.Validation == nil:
		return "-"
	case e.Validation.IsValid():
		return "VALID"
	default:
		return "INVALID"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
