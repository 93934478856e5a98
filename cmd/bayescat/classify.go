package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cognicore/bayescat/pkg/bayescat"
	"github.com/cognicore/bayescat/pkg/bayescat/bayes"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [flags] [file] text...",
	Short: "Train on a labeled set and classify a product description",
	Long: `Classify trains the hierarchy on file (or on a stored dataset with
--from-db) and prints the ranked brands and models for the given text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("from-db", "", "train on a dataset stored in --db instead of a file")
	classifyCmd.Flags().Int("top", 5, "number of ranked labels to print per level (0 prints all)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	fromDB, _ := cmd.Flags().GetString("from-db")
	top, _ := cmd.Flags().GetInt("top")

	path := ""
	if fromDB == "" {
		if len(args) < 2 {
			return fmt.Errorf("classify needs a training file and the text to classify")
		}
		path, args = args[0], args[1:]
	}
	text := strings.Join(args, " ")

	records, err := current.trainingSet(cmd.Context(), path, fromDB)
	if err != nil {
		return err
	}
	h, err := current.train(records)
	if err != nil {
		return err
	}

	res, ok := h.Classify(text)
	if !ok {
		return fmt.Errorf("no classes were learned from the training set")
	}
	return writeResult(os.Stdout, res, top, current.color)
}

func writeResult(w io.Writer, res bayescat.Result, top int, colored bool) error {
	bold := paint(color.New(color.Bold), colored)

	if _, err := fmt.Fprintf(w, "%s %s (%.4f)\n", bold.Sprint("Brand:"), res.ClassName, res.ClassScore); err != nil {
		return err
	}
	if err := writeRanking(w, res.Classes, top); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s (%.4f)\n", bold.Sprint("Model:"), res.SubClassName, res.SubClassScore); err != nil {
		return err
	}
	return writeRanking(w, res.SubClasses, top)
}

func writeRanking(w io.Writer, preds []bayes.Prediction, top int) error {
	if top > 0 && len(preds) > top {
		preds = preds[:top]
	}
	for _, p := range preds {
		if _, err := fmt.Fprintf(w, "  %-24s %.4f\n", p.Label, p.Score); err != nil {
			return err
		}
	}
	return nil
}

func paint(c *color.Color, on bool) *color.Color {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
