package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

func newScoreCmd() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "Score one client from flags and print the result as JSON",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "age", Usage: "age of the client (18-100)", Required: true},
			&cli.FloatFlag{Name: "income", Usage: "annual income of the client", Required: true},
			&cli.IntFlag{Name: "months-on-book", Usage: "number of months as bank client", Required: true},
			&cli.FloatFlag{Name: "credit-limit", Usage: "credit limit of the client", Required: true},
			&cli.StringFlag{Name: "model-version", Usage: "model version tag", Value: scoring.DefaultModelVersion},
			&cli.Uint64Flag{Name: "seed", Usage: "seed for the perturbation (0 for random)"},
			&cli.BoolFlag{Name: "explain", Usage: "print the full factor breakdown"},
		},
		Action: runScore,
	}
}

func runScore(ctx context.Context, cmd *cli.Command) error {
	features := scoring.ClientFeatures{
		Age:          cmd.Int("age"),
		Income:       cmd.Float("income"),
		MonthsOnBook: cmd.Int("months-on-book"),
		CreditLimit:  cmd.Float("credit-limit"),
	}
	if err := scoring.NewValidator().Validate(features); err != nil {
		return err
	}

	model, err := scoring.LoadModel(cmd.String("model-version"))
	if err != nil {
		return err
	}

	var source scoring.RandomSource
	if seed := cmd.Uint64("seed"); seed != 0 {
		source = scoring.NewSeededSource(seed)
	}
	result, err := scoring.NewScorer(source, slog.Default()).Score(model, features)
	if err != nil {
		return err
	}

	var out interface{} = result.Response()
	if cmd.Bool("explain") {
		out = result
	}
	return writeOutput(cmd.Root().Writer, out)
}

func writeOutput(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
