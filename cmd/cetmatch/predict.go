package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/cetmatch/app"
	"github.com/rushteam/cetmatch/core"
)

var (
	predictQuery   core.Query
	predictExplain bool
	predictJSON    bool
)

var predictCmd = &cobra.Command{
	Use:     "predict",
	Short:   "Run one match from the command line",
	Example: `  cetmatch predict --percentile 96.5 --branch "Computer Engineering" --caste OPEN --gender Male -n 5`,
	Args:    cobra.NoArgs,
	RunE:    runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.Float64VarP(&predictQuery.Percentile, "percentile", "p", 0, "candidate percentile (0-100)")
	f.StringVarP(&predictQuery.Branch, "branch", "b", "", "desired branch")
	f.StringVar(&predictQuery.Caste, "caste", "", "caste category")
	f.StringVarP(&predictQuery.Gender, "gender", "g", "", "gender")
	f.IntVarP(&predictQuery.Limit, "top-n", "n", core.DefaultLimit, "maximum number of colleges")
	f.BoolVar(&predictExplain, "explain", false, "print filter step, ranking path and per-result diff")
	f.BoolVar(&predictJSON, "json", false, "output as JSON")
	_ = predictCmd.MarkFlagRequired("percentile")
	_ = predictCmd.MarkFlagRequired("branch")
	_ = predictCmd.MarkFlagRequired("caste")
	_ = predictCmd.MarkFlagRequired("gender")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
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
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out, err := a.Matcher.Explain(ctx, predictQuery)
	if err != nil {
		return err
	}

	if predictJSON {
		var v any = map[string]any{"colleges": out.Colleges}
		if predictExplain {
			v = out
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if predictExplain {
		cmd.Printf("filter step: %s (subset %d of %d)\n", out.Step, out.Stats.Subset, out.Stats.Pool)
		cmd.Printf("rank path:   %s", out.Path)
		if out.FallbackReason != "" {
			cmd.Printf(" (%s)", out.FallbackReason)
		}
		cmd.Println()
		cmd.Println()
		for i, r := range out.Results {
			cmd.Printf("[%d] %s  %s / %s / %s  cutoff=%.2f diff=%.2f\n",
				i+1, r.College, r.Branch, r.Caste, r.Gender, r.Percentile, r.Diff)
		}
		return nil
	}
	for i, c := range out.Colleges {
		cmd.Printf("[%d] %s\n", i+1, c)
	}
	return nil
}
