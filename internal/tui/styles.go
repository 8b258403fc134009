package tui

import (
	"github.com/charmbracelet/lipgloss"

	"csv-quiz/internal/quiz"
)

var (
	styleHeader    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleSubtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleQuestion  = lipgloss.NewStyle().Bold(true)
	styleOption    = lipgloss.NewStyle().PaddingLeft(2)
	styleAnswered  = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("8"))
	styleActive    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleCorrect   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleIncorrect = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleInfo      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBox       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func noticeStyle(kind quiz.NoticeKind) lipgloss.Style {
	switch kind {
	case quiz.NoticeCorrect:
		return styleCorrect
	case quiz.NoticeIncorrect, quiz.NoticeError:
		return styleIncorrect
	default:
		return styleInfo
	}
}
