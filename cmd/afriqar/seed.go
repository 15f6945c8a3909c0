package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"afriqar/internal/blob"
	"afriqar/internal/source"
)

func newSeedCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the catalog documents into the configured source",
		Long: `Writes every *.json document into the configured source. The bundled
fixtures are used unless --from names a directory. Only the blob, sqlite and
postgres drivers are writable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "directory of JSON documents (default: bundled fixtures)")
	return cmd
}

func runSeed(ctx context.Context, out io.Writer, from string) error {
	var (
		docs map[string][]byte
		err  error
	)
	if from == "" {
		docs, err = source.Fixtures()
	} else {
		docs, err = source.ReadDir(os.DirFS(from))
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents to seed")
	}

	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	src, err := source.Open(ctx, cfg.Source, store)
	if err != nil {
		return fmt.Errorf("open %s source: %w", cfg.Source.Driver, err)
	}
	defer closeQuietly(src)

	if err := source.Seed(ctx, src, docs); err != nil {
		return err
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logger.Debug("seeded document", zap.String("document", name), zap.Int("bytes", len(docs[name])))
	}
	_, err = fmt.Fprintf(out, "seeded %d documents into the %s source\n", len(names), src.Driver())
	return err
}
