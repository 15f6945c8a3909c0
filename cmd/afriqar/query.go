package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"afriqar/internal/catalog"
)

const defaultTimeout = 30 * time.Second

type queryOptions struct {
	filters []string
	sort    string
	limit   int
	offset  int
	format  string
	timeout time.Duration
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query <resource>",
		Short: "Filter and sort one catalog",
		Long: `Loads a catalog from the configured source and prints one page of it.

Example:
  afriqar query movies --filter country=nigeria --filter decade=2010 --sort rating`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.filters, "filter", "f", nil, "filter as dimension=value (repeatable)")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "sort mode")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "page size (0 = all)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "page offset")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "table", "output format: table, json or csv")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "how long to wait for the catalog")
	return cmd
}

func parseFilters(pairs []string) (catalog.FilterState, error) {
	filters := catalog.FilterState{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid filter %q, want dimension=value", pair)
		}
		filters[strings.TrimSpace(name)] = value
	}
	return filters, nil
}

func runQuery(ctx context.Context, out io.Writer, resource string, opts queryOptions) error {
	filters, err := parseFilters(opts.filters)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	st, err := openStack(ctx, ctx, catalog.LoadOptions{})
	if err != nil {
		return err
	}
	defer closeQuietly(st)

	res, err := st.content.Registry.Resource(resource)
	if err != nil {
		return err
	}
	page, err := res.Query(ctx, catalog.Query{
		Filters: filters,
		Sort:    catalog.SortMode(opts.sort),
		Offset:  opts.offset,
		Limit:   opts.limit,
	})
	if err != nil {
		return err
	}
	if page.Status != catalog.StatusReady {
		return fmt.Errorf("%s still %s after %s", resource, page.Status, opts.timeout)
	}
	return printPage(out, page, opts.format)
}

func printPage(out io.Writer, page catalog.Page, format string) error {
	header, rows := page.Table()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "csv":
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return err
		}
		if err := w.WriteAll(rows); err != nil {
			return err
		}
		return w.Error()
	case "table", "":
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "%d of %d %s\n", len(rows), page.Total, page.Resource)
		if err == nil && len(page.Suggestions) > 0 {
			_, err = fmt.Fprintf(out, "did you mean: %s\n", strings.Join(page.Suggestions, ", "))
		}
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
