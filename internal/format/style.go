package format

import "github.com/charmbracelet/lipgloss"

// Style holds the lipgloss styles applied to individual fields when
// colored output is enabled. A nil *Style renders everything plain.
type Style struct {
	Name      lipgloss.Style
	Branch    lipgloss.Style
	Revision  lipgloss.Style
	Upstream  lipgloss.Style
	Dirty     lipgloss.Style
	Operation lipgloss.Style
}

// DefaultStyle returns the stock prompt palette.
func DefaultStyle() *Style {
	return &Style{
		Name:      lipgloss.NewStyle().Faint(true),
		Branch:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),  // cyan
		Revision:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),  // yellow
		Upstream:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),  // blue
		Dirty:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),  // red
		Operation: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (s *Style) name(v string) string {
	if s == nil || v == "" {
		return v
	}
	return s.Name.Render(v)
}

func (s *Style) branch(v string) string {
	if s == nil || v == "" {
		return v
	}
	return s.Branch.Render(v)
}

func (s *Style) revision(v string) string {
	if s == nil || v == "" {
		return v
	}
	return s.Revision.Render(v)
}

func (s *Style) upstream(v string) string {
	if s == nil || v == "" {
		return v
	}
	return s.Upstream.Render(v)
}

func (s *Style) dirty(v string) string {
	if s == nil || v == "" {
		return v
	}
	return s.Dirty.Render(v)
}

func (s *Style) operation(v string) string {
	if s == nil || v == "" {
		return v
	}
	return s.Operation.Render(v)
}
