package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/cetmatch/app"
	"github.com/rushteam/cetmatch/filter"
)

var (
	compareCriteria   filter.Criteria
	comparePercentile float64
	compareJSON       bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "List dataset rows matching optional filters",
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVarP(&compareCriteria.Branch, "branch", "b", "", "branch (case-insensitive)")
	f.StringVar(&compareCriteria.Caste, "category", "", "caste category (case-insensitive)")
	f.StringVarP(&compareCriteria.Gender, "gender", "g", "", "gender (case-insensitive)")
	f.Float64VarP(&comparePercentile, "percentile", "p", 0, "keep rows whose cutoff is at most this percentile")
	f.BoolVar(&compareJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
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

	c := compareCriteria
	if cmd.Flags().Changed("percentile") {
		p := comparePercentile
		c.Percentile = &p
	}
	rows := filter.Compare(pool, c)

	if compareJSON {
		data, err := json.MarshalIndent(map[string]any{"count": len(rows), "data": rows}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal rows: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Printf("%d rows\n", len(rows))
	for _, r := range rows {
		cmd.Printf("%6.2f  %s  %s / %s / %s\n", r.Percentile, r.College, r.Branch, r.Caste, r.Gender)
	}
	return nil
}
