package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/pullback/internal/autodiff"
	"github.com/born-ml/pullback/internal/config"
	"github.com/born-ml/pullback/internal/gradcheck"
)

var (
	checkConfigPath string   // YAML config file
	checkScenarios  []string // Overrides the config's scenario list
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the scenario catalog and finite-difference checks",
		Long: `Runs every reference scenario, compares its value and gradient with the
expected ones, then checks the gradient against central finite differences.

Examples:
  pullback check
  pullback check --scenario square --scenario index_alias
  pullback check --config pullback.yaml`,
		RunE: runCheck,
	}
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "path to YAML config file (reads "+config.DefaultPath+" if present when unset)")
	cmd.Flags().StringSliceVarP(&checkScenarios, "scenario", "s", nil, "scenario to run (repeatable)")
	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(checkConfigPath)
	if err != nil {
		return err
	}
	if len(checkScenarios) > 0 {
		cfg.Scenarios = checkScenarios
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())
	selected, err := selectScenarios(cfg.Scenarios)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	results := gradcheck.RunAll(cmd.Context(), selected, cfg.GradCheck.ScenarioTolerance,
		cfg.Settings(), cfg.ParallelConfig(), autodiff.WithLogger(logger))

	failed := 0
	for _, r := range results {
		if !report(out, logger, r) {
			failed++
		}
	}

	fmt.Fprintf(out, "\n%d/%d scenarios passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d scenarios failed", failed)
	}
	return nil
}

func report(out io.Writer, logger *slog.Logger, r gradcheck.Result) bool {
	log := logger.With(slog.String("scenario", r.Scenario.Name))
	if r.Err != nil {
		log.Error("scenario failed", slog.String("error", r.Err.Error()))
		fmt.Fprintf(out, "FAIL  %-20s %v\n", r.Scenario.Name, r.Err)
		return false
	}

	log.Debug("scenario passed",
		slog.Int("nodes", r.Outcome.Stats.Nodes),
		slog.Int("pullbacks_skipped", r.Outcome.Stats.Skipped),
		slog.Float64("max_fd_error", r.Report.MaxError),
	)
	fmt.Fprintf(out, "PASS  %-20s value=%.5f grad=%.5f fd_err=%.2e\n",
		r.Scenario.Name, r.Outcome.Value, r.Outcome.Grad, r.Report.MaxError)
	return true
}

func selectScenarios(names []string) ([]gradcheck.Scenario, error) {
	all := gradcheck.Scenarios()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]gradcheck.Scenario, len(all))
	for _, sc := range all {
		byName[sc.Name] = sc
	}
	selected := make([]gradcheck.Scenario, 0, len(names))
	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}
