package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/bayescat/pkg/bayescat/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] [file]",
	Short: "Train on a labeled set and report brand and model accuracy",
	Long: `Eval trains the hierarchy on the records of file (or of a stored dataset
with --from-db), classifies every record again and prints accuracy and
speed. With --db the report is also saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().String("from-db", "", "train on a dataset stored in --db instead of a file")
	evalCmd.Flags().Bool("misses", false, "list misclassified records")
}

func runEval(cmd *cobra.Command, args []string) error {
	fromDB, _ := cmd.Flags().GetString("from-db")
	showMisses, _ := cmd.Flags().GetBool("misses")

	path, name, err := source(args, fromDB)
	if err != nil {
		return err
	}

	report, err := current.evaluate(cmd.Context(), path, name, fromDB, showMisses)
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, current.color)
}

// source resolves the training input from the positional file or the
// --from-db dataset name. name labels the run in reports.
func source(args []string, fromDB string) (path, name string, err error) {
	switch {
	case fromDB != "" && len(args) > 0:
		return "", "", fmt.Errorf("give either a file or --from-db, not both")
	case fromDB != "":
		return "", fromDB, nil
	case len(args) == 1:
		return args[0], args[0], nil
	default:
		return "", "", fmt.Errorf("a training file or --from-db is required")
	}
}

func (e *env) evaluate(ctx context.Context, path, name, fromDB string, keepMisses bool) (eval.Report, error) {
	records, err := e.trainingSet(ctx, path, fromDB)
	if err != nil {
		return eval.Report{}, err
	}
	h, err := e.train(records)
	if err != nil {
		return eval.Report{}, err
	}

	opts := eval.Options{
		Workers:   e.comp.Config.Eval.Workers,
		MaxMisses: e.comp.Config.Eval.MaxMisses,
		Logger:    e.logger,
	}
	switch {
	case !keepMisses:
		opts.MaxMisses = 0
	case opts.MaxMisses == 0:
		opts.MaxMisses = -1
	}
	report, err := eval.New(opts).Run(ctx, name, h, records)
	if err != nil {
		return eval.Report{}, err
	}

	if e.dbPath != "" {
		if err := e.saveReport(ctx, report); err != nil {
			return eval.Report{}, err
		}
	}
	return report, nil
}

func (e *env) saveReport(ctx context.Context, r eval.Report) error {
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	row, err := r.ToStore()
	if err != nil {
		return err
	}
	if err := st.SaveReport(ctx, row); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	e.logger.Info().Str("id", r.ID).Str("db", e.dbPath).Msg("report saved")
	return nil
}
