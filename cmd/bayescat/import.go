package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] file",
	Short: "Store a labeled file in the database",
	Long: `Import reads a labeled CSV or JSONL file and stores its records under
--name in --db, replacing any dataset of the same name.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("name", "", "dataset name (defaults to the file name without extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	n, err := current.importFile(cmd.Context(), args[0], name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
	return nil
}

func (e *env) importFile(ctx context.Context, path, name string) (int, error) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	records, err := e.readFile(path)
	if err != nil {
		return 0, err
	}

	st, err := e.openStore(ctx)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	if err := st.ReplaceDataset(ctx, name, records); err != nil {
		return 0, fmt.Errorf("store dataset %q: %w", name, err)
	}
	e.logger.Info().Str("dataset", name).Int("records", len(records)).Msg("dataset imported")
	return len(records), nil
}
