package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"afriqar/internal/catalog"
	"afriqar/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulation from the command line",
	}
	cmd.AddCommand(newSimulateDNACmd())
	return cmd
}

func newSimulateDNACmd() *cobra.Command {
	var (
		delay time.Duration
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "dna <file>",
		Short: "Analyse a raw DNA upload and print the tribal matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delay") {
				delay = cfg.GetDNADelay()
			}
			return runDNA(cmd.Context(), cmd.OutOrStdout(), args[0], delay, seed)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "analysis delay (default simulation.dna_delay)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 = random)")
	return cmd
}

func runDNA(ctx context.Context, out io.Writer, fileName string, delay time.Duration, seed uint64) error {
	st, err := openStack(ctx, ctx, catalog.LoadOptions{})
	if err != nil {
		return err
	}
	defer closeQuietly(st)

	rng := simulation.NewSeededRandom()
	if seed != 0 {
		rng = simulation.NewRandom(seed)
	}
	lab := simulation.NewLab(simulation.Options{Name: "dna", Delay: delay, Logger: logger}, rng, st.content.Tribes)
	defer lab.Close()

	if err := lab.Upload(fileName); err != nil {
		return err
	}
	if _, err := lab.Analysis().Wait(ctx); err != nil {
		return err
	}
	view, err := lab.View(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
