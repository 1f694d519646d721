// Command extract builds a training feature table from a labelled URL CSV.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"phishing-detector/config"
	"phishing-detector/dataset"
	"phishing-detector/features"
	"phishing-detector/logger"
)

var (
	inputFile  string
	outputFile string
	live       bool
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract URL features from a url,label CSV for model training",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.Init(cfg.Log)

		fc := cfg.Features
		fc.FastMode = !live
		ex := features.New(fc)

		in, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer in.Close()

		var out io.Writer = cmd.OutOrStdout()
		if outputFile != "" && outputFile != "-" {
			f, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		start := time.Now()
		n, err := dataset.Export(ctx, ex, in, out, workers)
		if err != nil {
			return fmt.Errorf("export %s: %w", inputFile, err)
		}
		log.Info().
			Int("rows", n).
			Bool("live", live).
			Dur("took", time.Since(start)).
			Str("out", outputFile).
			Msg("feature export done")
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVarP(&inputFile, "in", "i", "", "input CSV with url,label columns")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "output CSV (default stdout)")
	rootCmd.Flags().BoolVar(&live, "live", false, "run WHOIS, DNS and blacklist lookups")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", dataset.DefaultWorkers, "concurrent rows")
	_ = rootCmd.MarkFlagRequired("in")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
