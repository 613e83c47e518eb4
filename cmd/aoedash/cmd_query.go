package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"aoedash/cmd/aoedash/ui"
	"aoedash/internal/chart"
	"aoedash/internal/config"
	"aoedash/internal/dashboard"
	"aoedash/internal/filter"
	"aoedash/internal/pages"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	queryFilters []string
	queryCSV     bool
	queryRaw     bool

	chartCiv string
	chartMap string
	chartElo string
	chartOut string
)

// parseFilters turns repeated column=v1,v2 flags into a filter spec.
func parseFilters(raw []string) (filter.Spec, error) {
	spec := make(filter.Spec)
	for _, r := range raw {
		col, vals, ok := strings.Cut(r, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid filter %q: want column=value[,value...]", r)
		}
		for _, v := range strings.Split(vals, ",") {
			if v = strings.TrimSpace(v); v != "" {
				spec[col] = append(spec[col], v)
			}
		}
		if _, ok := spec[col]; !ok {
			spec[col] = nil
		}
	}
	return spec, nil
}

// fixedSubmit submits explicit on every pass. Single-select columns left
// out start on their default option, the way the dashboard's widgets do.
func fixedSubmit(explicit filter.Spec) dashboard.SubmitFunc {
	return func(p *pages.Page, options map[string][]string, _ uint64) filter.Spec {
		spec := explicit.Clone()
		for _, f := range p.Filters {
			if _, ok := spec[f.Column]; !ok && f.Kind == pages.SingleSelect {
				spec[f.Column] = f.Default(options[f.Column])
			}
		}
		return spec
	}
}

// renderOnce opens the app, renders namespace with the given filters and
// returns the settled view.
func renderOnce(ctx context.Context, namespace string, explicit filter.Spec) (*app, *dashboard.View, error) {
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return nil, nil, err
	}

	v, err := a.dash.Render(ctx, namespace, fixedSubmit(explicit))
	if err != nil {
		a.Close()
		if errors.Is(err, filter.ErrMissingColumn) {
			p, _ := pages.Lookup(namespace)
			return nil, nil, fmt.Errorf("%w; page %s filters on %s", err, namespace, strings.Join(p.Columns(), ", "))
		}
		return nil, nil, err
	}
	if v.FetchErr != nil {
		a.Close()
		return nil, nil, v.FetchErr
	}
	logger.Debug("rendered page",
		zap.String("page", namespace),
		zap.Int("passes", v.Passes),
		zap.Int("rows", v.Table.Len()))
	return a, v, nil
}

// queryPage prints one page's table.
func queryPage(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	spec, err := parseFilters(queryFilters)
	if err != nil {
		return err
	}

	a, v, err := renderOnce(ctx, args[0], spec)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if queryRaw {
		return v.Dataset.Encode(out, true)
	}
	if queryCSV {
		return v.Table.WriteCSV(out)
	}

	if v.Table.Len() == 0 {
		fmt.Fprintln(out, "No rows match the selected filters.")
		return nil
	}
	table := ui.NewSimpleTable(v.Page.Heading+" ("+v.LastUpdated()+")", v.Table.Columns...)
	for _, row := range v.Table.Rows {
		table.AddRow(row...)
	}
	fmt.Fprint(out, table.View(ui.DefaultStyles()))
	fmt.Fprintf(out, "%d row(s)\n", v.Table.Len())
	return nil
}

// exportChart writes the civ performance chart for one civ, map and Elo
// bucket.
func exportChart(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	spec := filter.Spec{}
	if chartCiv != "" {
		spec["civ"] = []string{chartCiv}
	}
	if chartMap != "" {
		spec["map"] = []string{chartMap}
	}
	if chartElo != "" {
		spec["match_elo_bucket"] = []string{chartElo}
	}

	a, v, err := renderOnce(ctx, config.PagePerformance, spec)
	if err != nil {
		return err
	}
	defer a.Close()

	path := chartOut
	if path == "" {
		var parts []string
		for _, f := range v.Page.Filters {
			parts = append(parts, v.Committed[f.Column]...)
		}
		path = filepath.Join(a.cfg.UI.ChartDir, chart.FileName(v.Page.Namespace, parts...))
	}

	if err := chart.WriteFile(path, v.Series, chart.Options{Title: v.Page.ChartTitle}); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			return fmt.Errorf("no matches for civ=%v map=%v elo=%v: %w",
				v.Committed["civ"], v.Committed["map"], v.Committed["match_elo_bucket"], err)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d point(s))\n", path, len(v.Series))
	return nil
}
