package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/unshred/pkg/core/sequence"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// maxWalkWidth truncates long sequences in the candidate table.
const maxWalkWidth = 48

// =============================================================================
// CandidateListModel - Interactive candidate browser
// =============================================================================

// CandidateListModel is the bubbletea model for browsing candidates.
// Candidates are sorted by cost; the winner is the first row.
type CandidateListModel struct {
	Title      string
	Candidates []sequence.Candidate
	Stripes    int
	Cursor     int
	Offset     int
	Height     int
	Selected   *sequence.Candidate
}

// NewCandidateListModel creates a candidate browser over cands.
func NewCandidateListModel(title string, cands []sequence.Candidate, stripes int) CandidateListModel {
	return CandidateListModel{
		Title:      title,
		Candidates: sortByCost(cands),
		Stripes:    stripes,
		Height:     15,
	}
}

func (m CandidateListModel) Init() tea.Cmd {
	return nil
}

func (m CandidateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Candidates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Candidates); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		case "enter":
			if len(m.Candidates) == 0 {
				return m, nil
			}
			c := m.Candidates[m.Cursor]
			m.Selected = &c
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
	}
	return m, nil
}

func (m CandidateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Candidates))
	b.WriteString(candidateTable(m.Candidates, m.Stripes, m.Offset, end, m.Cursor).Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Candidates))))

	return b.String()
}

// =============================================================================
// Table rendering
// =============================================================================

// candidateTable renders cands[from:to] as a table. Row from+i is the
// cursor row when cursor == from+i; pass -1 for no cursor. cands must be
// sorted by cost so index 0 is the winner.
func candidateTable(cands []sequence.Candidate, stripes, from, to, cursor int) *table.Table {
	rows := make([][]string, 0, to-from)
	for i := from; i < to; i++ {
		c := cands[i]
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(c.Start),
			formatCost(c.Cost),
			fmt.Sprintf("%d/%d", c.Distinct(), stripes),
			strconv.Itoa(c.Revisits()),
			formatWalk(c.Walk, maxWalkWidth),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Start", "Cost", "Placed", "Revisits", "Sequence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := from + row
			base := lipgloss.NewStyle()
			if idx >= len(cands) {
				return base
			}
			switch {
			case idx == 0:
				base = base.Foreground(colorGreen)
			case cands[idx].Revisits() > 0:
				base = base.Foreground(colorYellow)
			default:
				base = base.Foreground(colorWhite)
			}
			if idx == cursor {
				base = base.Bold(true)
			}
			return base
		})
}

// sortByCost returns a copy of cands ordered by cost, ties by start id.
func sortByCost(cands []sequence.Candidate) []sequence.Candidate {
	out := slices.Clone(cands)
	slices.SortStableFunc(out, func(a, b sequence.Candidate) int {
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}

// formatWalk joins ids with spaces, eliding the middle beyond width runes.
func formatWalk(walk []int, width int) string {
	parts := make([]string, len(walk))
	for i, id := range walk {
		parts[i] = strconv.Itoa(id)
	}
	s := strings.Join(parts, " ")
	if len(s) <= width {
		return s
	}
	half := (width - 3) / 2
	return s[:half] + "..." + s[len(s)-half:]
}
