// Package main provides the templategen CLI, which renders an evaluation workbook
// from a YAML configuration without the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/locvowork/ltxbench/pkg/evalworkbook"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type cliOptions struct {
	outputPath    string
	format        string
	rows          int
	protectHelper bool
	password      string
	verbose       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "templategen [config.yaml]",
		Short: "Generate an evaluation workbook from a YAML configuration",
		Long: `templategen builds the README, formula helper and Part 1-3 sheets
described by a YAML configuration and writes them as xlsx, or writes the
README metrics table alone as csv.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: config name with the format extension)")
	cmd.Flags().StringVar(&opts.format, "format", "xlsx", "Output format: xlsx, csv")
	cmd.Flags().IntVar(&opts.rows, "rows", evalworkbook.DefaultEvaluationRows, "Formula rows per Part 1 sheet")
	cmd.Flags().BoolVar(&opts.protectHelper, "protect-helper", true, "Protect the hidden FORMULA_HELPER sheet")
	cmd.Flags().StringVar(&opts.password, "helper-password", "", "Password for the protected helper sheet")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log build steps")
	return cmd
}

func run(ctx context.Context, opts *cliOptions, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	ctx = l.WithContext(ctx)

	format := strings.ToLower(opts.format)
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("invalid format: %s (must be xlsx or csv)", opts.format)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := evalworkbook.LoadConfigurationYAML(data)
	if err != nil {
		return err
	}
	for _, name := range cfg.CoercedWeights() {
		log.Ctx(ctx).Warn().Str("metric", name).Int("weight", evalworkbook.DefaultWeight).Msg("invalid weight replaced by default")
	}

	out := opts.outputPath
	if out == "" {
		out = strings.TrimSuffix(configPath, filepath.Ext(configPath)) + "." + format
	}

	if format == "csv" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		if err := evalworkbook.ExportMetricsCSV(f, cfg); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	builderOpts := []evalworkbook.Option{evalworkbook.WithEvaluationRows(opts.rows)}
	if opts.protectHelper {
		builderOpts = append(builderOpts, evalworkbook.WithHelperProtection(opts.password))
	}
	xlsx, err := evalworkbook.NewBuilder(builderOpts...).Build(ctx, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, xlsx, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Ctx(ctx).Info().Str("output", out).Int("bytes", len(xlsx)).Msg("workbook written")
	return nil
}
