// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kusari-oss/piper/internal/core/models"
)

// Title heads the detection table
const Title = "Piper Detection Report"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#01FAC6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = cellStyle.Foreground(lipgloss.Color("#40BDA3"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Rows returns the key/value rows shown for a record. Empty values render as "-".
func Rows(record models.DetectionRecord) [][]string {
	return [][]string{
		{"Types", orDash(strings.Join(record.Types, ", "))},
		{"Framework", orDash(string(record.Framework))},
		{"Deploy", orDash(string(record.Deploy))},
	}
}

// Render returns the detection table
func Render(record models.DetectionRecord) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Key", "Value").
		Rows(Rows(record)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			default:
				return cellStyle
			}
		})

	return titleStyle.Render(Title) + "\n" + t.String()
}

// Print writes the detection table to w
func Print(w io.Writer, record models.DetectionRecord) error {
	_, err := fmt.Fprintln(w, Render(record))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
