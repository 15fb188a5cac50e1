package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wabdoteth/sappy-care/internal/engine"
)

// RunBoard runs the interactive dashboard until the user quits. When
// watchPath is set the board reloads whenever that file changes.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer, watchPath string) error {
	m := newBoardModel(ctx, svc)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	if watchPath != "" {
		stop, err := StartWatcher(watchPath, p)
		if err != nil {
			return err
		}
		defer stop()
	}
	_, err := p.Run()
	return err
}
