package main

import (
	"context"
	"fmt"

	"aoedash/cmd/aoedash/ui"
	"aoedash/internal/config"
	"aoedash/internal/pages"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listPages prints every page with its filters and configured source.
func listPages(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	table := ui.NewSimpleTable("Pages", "Page", "Title", "Filters", "Source")
	for _, p := range pages.All() {
		src, ok := cfg.PageSource(p.Namespace)
		if !ok {
			src = "(not configured)"
		}
		var filters string
		for i, f := range p.Filters {
			if i > 0 {
				filters += ", "
			}
			filters += fmt.Sprintf("%s (%s)", f.Column, f.Kind)
		}
		table.AddRow(p.Namespace, p.Title, filters, src)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
	return nil
}

// fetchPages downloads the snapshots of the named pages, all of them by
// default, and reports what arrived.
func fetchPages(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	names := args
	if len(names) == 0 {
		names = a.cfg.PageNames()
	}
	paths := make([]string, 0, len(names))
	for _, ns := range names {
		src, ok := a.dash.Source(ns)
		if !ok {
			return fmt.Errorf("unknown page %q (known: %v)", ns, a.cfg.PageNames())
		}
		paths = append(paths, src)
	}

	logger.Info("fetching snapshots", zap.Strings("paths", paths), zap.String("source", a.source.Describe()))
	fetchErr := a.fetcher.Prefetch(ctx, paths)

	table := ui.NewSimpleTable("Snapshots from "+a.source.Describe(), "Page", "Path", "Rows", "Columns", "Fetched")
	for i, ns := range names {
		path := paths[i]
		if !a.fetcher.Cached(path) {
			table.AddRow(ns, path, "-", "-", "failed")
			continue
		}
		ds, err := a.fetcher.Fetch(ctx, path)
		if err != nil {
			table.AddRow(ns, path, "-", "-", "failed")
			continue
		}
		fetched := ds.FetchedAt.Local().Format("2006-01-02 15:04")
		if a.fetcher.Stale(path) {
			fetched += " (cached)"
		}
		table.AddRow(ns, path, fmt.Sprint(ds.Len()), fmt.Sprint(len(ds.Columns())), fetched)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))

	if a.cache != nil {
		entries, err := a.cache.Entries(ctx)
		if err != nil {
			logger.Warn("listing snapshot cache", zap.Error(err))
		} else {
			cached := ui.NewSimpleTable("Snapshot cache "+a.cache.Path(), "Path", "Size", "Fetched")
			for _, e := range entries {
				cached.AddRow(e.Path, fmt.Sprintf("%d B", e.Size), e.FetchedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprint(cmd.OutOrStdout(), cached.View(ui.DefaultStyles()))
		}
	}

	return fetchErr
}
