// Package view renders records for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stevemurr/policyledger/policy"
)

var (
	Accent = lipgloss.Color("#00C832")
	Muted  = lipgloss.Color("#aaaaaa")
	Warn   = lipgloss.Color("#FFD700")

	LabelStyle   = lipgloss.NewStyle().Foreground(Muted)
	IDStyle      = lipgloss.NewStyle().Bold(true)
	PremiumStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	EmptyStyle   = lipgloss.NewStyle().Foreground(Warn)
	TitleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Line formats one record the same way every command shows it:
//
//	ID: 1 | Name: Ada | Age: 30 | Type: Auto | Sum Insured: 1000.00 | Vehicle age: 2 | Premium: 55.00
func Line(r policy.Record) string {
	parts := []string{
		field("ID", IDStyle.Render(fmt.Sprint(r.ID))),
		field("Name", r.Name),
		field("Age", fmt.Sprint(r.Age)),
		field("Type", r.Type.String()),
		field("Sum Insured", fmt.Sprintf("%.2f", r.SumInsured)),
	}
	if r.Type == policy.Auto {
		parts = append(parts, field("Vehicle age", fmt.Sprint(r.VehicleAge)))
	}
	parts = append(parts, field("Premium", PremiumStyle.Render(fmt.Sprintf("%.2f", policy.Premium(r)))))
	return strings.Join(parts, " | ")
}

func field(label, value string) string {
	return LabelStyle.Render(label+":") + " " + value
}

// List writes a titled listing, or a notice when there are no records.
func List(w io.Writer, records []policy.Record) {
	fmt.Fprintln(w, TitleStyle.Render("All Customers / Policies"))
	if len(records) == 0 {
		fmt.Fprintln(w, EmptyStyle.Render("No records found."))
		return
	}
	for _, r := range records {
		fmt.Fprintln(w, Line(r))
	}
}

// PremiumLine is the answer to a single premium query.
func PremiumLine(r policy.Record) string {
	return fmt.Sprintf("Calculated premium for ID %d (%s): %s",
		r.ID, r.Name, PremiumStyle.Render(fmt.Sprintf("%.2f", policy.Premium(r))))
}
