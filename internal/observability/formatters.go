// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume2portfolio/internal/profile"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintProfile outputs a human-readable summary of a normalized profile.
func (p *Printer) PrintProfile(prof *profile.Profile) {
	if prof == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("File ID:  %s\n", prof.FileID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(prof.Name)))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", orDash(prof.Role)))
	if prof.GeneratedAbout != "" {
		sb.WriteString("About:    generated\n")
	}
	sb.WriteString("\n")

	if len(prof.ContactItems) > 0 {
		sb.WriteString("Contact:\n")
		for _, item := range prof.ContactItems {
			sb.WriteString(fmt.Sprintf("  • %-8s %s\n", item.Kind, item.Value))
		}
		sb.WriteString("\n")
	}

	if len(prof.SkillGroups) > 0 {
		sb.WriteString("Skills:\n")
		for _, group := range prof.SkillGroups {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", group.Category, strings.Join(group.Skills, ", ")))
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Experience", prof.ExperienceEntries)
	writeList(&sb, "Education", prof.EducationEntries)

	if len(prof.ProjectEntries) > 0 {
		titles := make([]string, 0, len(prof.ProjectEntries))
		for _, project := range prof.ProjectEntries {
			titles = append(titles, project.Title)
		}
		writeList(&sb, "Projects", titles)
	}

	p.printBox("NORMALIZED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSections outputs which portfolio sections a profile fills.
func (p *Printer) PrintSections(titles []string) {
	if len(titles) == 0 {
		p.printBox("PORTFOLIO SECTIONS", "(none: only the hero and export links render)")
		return
	}
	p.printBox("PORTFOLIO SECTIONS", strings.Join(titles, " · "))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("%s (%d):\n", title, len(items)))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
