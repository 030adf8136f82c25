// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/miriam/othersupport-converter/internal/types"
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
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of the extracted profile.
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Investigator: %s\n", fullName(profile.Identification.Name)))
	if len(profile.Employment) > 0 {
		pos := profile.Employment[0]
		sb.WriteString(fmt.Sprintf("Position:     %s", pos.PositionTitle))
		if pos.Organization.OrgName != "" {
			sb.WriteString(fmt.Sprintf(", %s", pos.Organization.OrgName))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	active, pending, inkind := 0, 0, 0
	for _, sup := range profile.Funding {
		switch sup.Status {
		case types.StatusActive:
			active++
		case types.StatusPending:
			pending++
		case types.StatusInKind:
			inkind++
		}
	}
	sb.WriteString(fmt.Sprintf("Support entries: %d active, %d pending, %d in-kind\n", active, pending, inkind))

	count := min(len(profile.Funding), maxItemsToShow)
	if count > 0 {
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		sup := profile.Funding[i]
		title := sup.ProjectTitle
		if title == "" {
			title = sup.InKindDescription
		}
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", title))

		detail := string(sup.Status)
		if sup.AwardNumber != "" {
			detail += ", " + sup.AwardNumber
		}
		if sup.AwardAmount > 0 {
			detail += fmt.Sprintf(", $%.0f", sup.AwardAmount)
		}
		sb.WriteString(fmt.Sprintf("  [%s]\n", detail))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(profile.Funding) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more entries", len(profile.Funding)-maxItemsToShow))
	}

	p.printBox("EXTRACTED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCleaningNotes outputs the normalization notes recorded while the
// document was cleaned.
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) PrintCleaningNotes(notes []types.CleaningNote) {
	if len(notes) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO CLEANING NOTES")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recorded %d notes:\n\n", len(notes)))

	for i, n := range notes {
		note := n.Note
		if len(note) > 45 {
			note = note[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", n.Section))
		sb.WriteString(fmt.Sprintf("  %s\n", note))
		if i < len(notes)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CLEANING NOTES", sb.String())
}

// fullName joins the name parts that are present.
func fullName(name types.Name) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{name.FirstName, name.MiddleName, name.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "(not found)"
	}
	return strings.Join(parts, " ")
}
