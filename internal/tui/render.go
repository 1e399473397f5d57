package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/voltlab/patchmind/internal/patch"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cableStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// RenderPatch draws the patch pane: connections in patching order, then
// parameter suggestions, then tips.
func RenderPatch(p *patch.Patch) string {
	if p == nil {
		return dimStyle.Render("no patch loaded")
	}
	var b strings.Builder
	title := p.Metadata.Title
	if title == "" {
		title = "Untitled Patch"
	}
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	if p.Saved {
		b.WriteString(savedStyle.Render("● saved"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Connections"))
	b.WriteString("\n")
	ordered := p.OrderedConnections()
	if len(ordered) == 0 {
		b.WriteString(dimStyle.Render("  (none yet)"))
		b.WriteString("\n")
	}
	for i, conn := range ordered {
		marker := " "
		if conn.Importance == patch.ImportancePrimary {
			marker = "●"
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", marker, i+1, cableStyle.Render(describeConnection(conn))))
	}

	if len(p.ParameterSuggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Settings"))
		b.WriteString("\n")
		for _, sug := range p.ParameterSuggestions {
			b.WriteString(fmt.Sprintf("  %s %s → %s\n", sug.ModuleName, sug.Parameter, sug.Value))
		}
	}

	if len(p.Tips) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Tips"))
		b.WriteString("\n")
		for _, tip := range p.Tips {
			b.WriteString(dimStyle.Render("  · " + tip))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeConnection(conn patch.Connection) string {
	return fmt.Sprintf("%s/%s → %s/%s (%s)",
		conn.From.ModuleName, conn.From.Port,
		conn.To.ModuleName, conn.To.Port,
		conn.SignalType)
}
