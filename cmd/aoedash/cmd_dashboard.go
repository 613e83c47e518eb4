package main

import (
	"context"

	"aoedash/cmd/aoedash/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runDashboard starts the interactive dashboard.
func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx, appOptions{Interactive: true})
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.New(ui.Options{
		Context:   ctx,
		Dashboard: a.dash,
		Changes:   a.changes(),
		ChartDir:  a.cfg.UI.ChartDir,
		Theme:     a.cfg.UI.Theme,
		Prefetch:  a.cfg.Storage.Prefetch,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
