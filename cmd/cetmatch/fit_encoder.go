package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/cetmatch/app"
	"github.com/rushteam/cetmatch/feature"
)

var fitEncoderOut string

var fitEncoderCmd = &cobra.Command{
	Use:   "fit-encoder",
	Short: "Fit the one-hot encoder vocabulary from the dataset",
	Long: `Reads the configured dataset, collects the sorted unique branch,
caste and gender values and writes the encoder JSON (default: encoder.path).`,
	Args: cobra.NoArgs,
	RunE: runFitEncoder,
}

func init() {
	fitEncoderCmd.Flags().StringVarP(&fitEncoderOut, "out", "o", "", "output path (overrides encoder.path)")
	rootCmd.AddCommand(fitEncoderCmd)
}

func runFitEncoder(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, _, err := app.LoadPool(ctx, cfg.Data, logger)
	if err != nil {
		return err
	}

	enc, err := feature.FitOneHotEncoder(pool)
	if err != nil {
		return err
	}
	out := fitEncoderOut
	if out == "" {
		out = cfg.Encoder.Path
	}
	if err := enc.Save(out); err != nil {
		return err
	}
	logger.Info("encoder written",
		zap.String("path", out),
		zap.Int("width", enc.Width()),
		zap.Int("branches", len(enc.Categories[feature.ColumnBranch])),
		zap.Int("castes", len(enc.Categories[feature.ColumnCaste])),
		zap.Int("genders", len(enc.Categories[feature.ColumnGender])),
	)
	return nil
}
