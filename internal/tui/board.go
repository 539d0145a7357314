package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

func RunBoard(ctx context.Context, game Game, out io.Writer) error {
	m := newBoardModel(ctx, game)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
