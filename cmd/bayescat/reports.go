package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/bayescat/pkg/bayescat/eval"
	"github.com/cognicore/bayescat/pkg/bayescat/store"
)

var reportsCmd = &cobra.Command{
	Use:   "reports [flags]",
	Short: "List stored datasets and evaluation reports",
	Args:  cobra.NoArgs,
	RunE:  runReports,
}

func init() {
	reportsCmd.Flags().String("dataset", "", "only show reports for this dataset")
	reportsCmd.Flags().Int("limit", 20, "maximum number of reports")
}

func runReports(cmd *cobra.Command, args []string) error {
	datasetName, _ := cmd.Flags().GetString("dataset")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := current.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	return listReports(cmd.Context(), cmd.OutOrStdout(), st, datasetName, limit)
}

func listReports(ctx context.Context, w io.Writer, st store.Store, datasetName string, limit int) error {
	datasets, err := st.Datasets(ctx)
	if err != nil {
		return err
	}
	rows, err := st.Reports(ctx, datasetName, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tRECORDS\tCLASSES\tUPDATED")
	for _, d := range datasets {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.Name, humanize.Comma(int64(d.Records)), d.Classes, humanize.Time(d.UpdatedAt))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "REPORT\tDATASET\tBRAND\tMODEL\tRECORDS\tCREATED")
	for _, row := range rows {
		r, err := eval.FromStore(row)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.2f%%\t%s\t%s\n",
			r.ID, r.Dataset, r.ClassAccuracy(), r.SubClassAccuracy(),
			humanize.Comma(int64(r.Total)), humanize.Time(r.CreatedAt))
	}
	return tw.Flush()
}
