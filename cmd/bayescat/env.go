package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cognicore/bayescat/pkg/bayescat"
	"github.com/cognicore/bayescat/pkg/bayescat/config"
	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/store"
	"github.com/cognicore/bayescat/pkg/bayescat/store/sqlite"
)

// env carries what every subcommand needs once flags are parsed.
type env struct {
	logger zerolog.Logger
	comp   *config.Components
	dbPath string
	color  bool
}

var current *env

func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")
	level, _ := flags.GetString("log-level")
	colorFlag, _ := flags.GetString("color")
	dbPath, _ := flags.GetString("db")

	e, err := newEnv(configPath, level, os.Stderr)
	if err != nil {
		return err
	}
	e.dbPath = dbPath
	e.color = colorFlag == "on" || (colorFlag == "auto" && !color.NoColor)
	current = e
	return nil
}

func newEnv(configPath, level string, logOut io.Writer) (*env, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: logOut}).
		Level(lvl).
		With().Timestamp().Logger()

	loader := config.Loader{ConfigPath: configPath, Logger: logger}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return &env{logger: logger, comp: comp}, nil
}

func (e *env) openStore(ctx context.Context) (store.Store, error) {
	if e.dbPath == "" {
		return nil, fmt.Errorf("%w: --db is required", internalerr.ErrInvalidInput)
	}
	return sqlite.OpenSQLite(ctx, e.dbPath)
}

// readFile loads a labeled file and lowercases its labels.
func (e *env) readFile(path string) ([]dataset.Record, error) {
	records, err := dataset.Load(path, e.comp.Dataset)
	if err != nil {
		return nil, err
	}
	return dataset.Normalize(records), nil
}

// trainingSet reads the records from the store when fromDB is set, from
// path otherwise, and augments them when configured to.
func (e *env) trainingSet(ctx context.Context, path, fromDB string) ([]dataset.Record, error) {
	var (
		records []dataset.Record
		err     error
	)
	if fromDB != "" {
		st, err := e.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		records, err = st.Records(ctx, fromDB)
		if err != nil {
			return nil, err
		}
		records = dataset.Normalize(records)
	} else {
		records, err = e.readFile(path)
		if err != nil {
			return nil, err
		}
	}

	if e.comp.Config.Dataset.Augment {
		records = dataset.Augment(records)
	}
	e.logger.Info().Int("records", len(records)).Msg("training set loaded")
	return records, nil
}

func (e *env) train(records []dataset.Record) (*bayescat.Hierarchy, error) {
	h := bayescat.New(bayescat.Options{Tokenizer: e.comp.Tokenizer})
	if err := h.Fit(records); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	e.logger.Debug().
		Int("classes", len(h.Classes())).
		Int("vocabulary", h.Top().VocabularySize()).
		Msg("hierarchy trained")
	return h, nil
}
