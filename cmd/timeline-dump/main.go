// Command timeline-dump prints the keyframes generated for a configuration as
// JSON, or the values sampled at one moment of the loop.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	app "github.com/okian/twinkle/internal/app"
	"github.com/okian/twinkle/pkg/logger"
)

type options struct {
	settings   app.Settings
	blurTarget string
	seed       int64
	at         float64
	out        string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	w := io.Writer(os.Stdout)
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			os.Stderr.WriteString("failed to create output: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := dump(context.Background(), opts, w); err != nil {
		os.Stderr.WriteString("dump failed: " + err.Error() + "\n")
		os.Exit(1) //nolint:gocritic // output file is best effort on failure
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	defaults := app.DefaultSettings()
	fs := flag.NewFlagSet("timeline-dump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.IntVar(&o.settings.StarCount, "stars", defaults.StarCount, "Number of twinkling stars")
	fs.Float64Var(&o.settings.StarSize, "size", defaults.StarSize, "Star diameter in pixels")
	fs.Float64Var(&o.settings.LoopDuration, "loop", defaults.LoopDuration, "Loop duration in seconds")
	fs.Float64Var(&o.settings.BlurAmount, "blur", defaults.BlurAmount, "Breathing blur peak in pixels")
	fs.StringVar(&o.blurTarget, "target", "backdrop", "Breathing blur target; empty disables breathing")
	fs.Int64Var(&o.seed, "seed", 0, "Random seed; 0 seeds from the clock")
	fs.Float64Var(&o.at, "t", math.NaN(), "Print values sampled at this time instead of keyframes")
	fs.StringVar(&o.out, "out", "", "Output file (default: stdout)")
	o.settings.AutoStart = defaults.AutoStart

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func dump(ctx context.Context, o options, w io.Writer) error {
	svc := app.New(
		app.WithLogger(logger.Get().Named("timeline-dump")),
		app.WithBlurTarget(o.blurTarget),
		app.WithSeed(o.seed),
	)
	sc, err := svc.Preview(ctx, o.settings)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if math.IsNaN(o.at) {
		return enc.Encode(sc)
	}
	return enc.Encode(map[string]any{
		"generation": sc.Generation,
		"t":          o.at,
		"targets":    sc.Sample(o.at),
	})
}
