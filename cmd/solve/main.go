package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	json "github.com/goccy/go-json"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/logging"
	"github.com/atharv3903/freightpath/internal/model"
	"github.com/atharv3903/freightpath/internal/routing"
)

// main plans one input document from a file or stdin.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "solve:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		inPath     = fs.String("in", "", "input JSON file (default stdin)")
		outPath    = fs.String("out", "", "output JSON file (default stdout)")
		duplicates = fs.String("duplicates", string(algo.DuplicateLastWins), "duplicate edge policy: last-wins, keep-min, reject")
		workers    = fs.Int("workers", runtime.GOMAXPROCS(0), "shipments solved concurrently")
		logLevel   = fs.String("log-level", "warn", "debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	policy, err := algo.ParseDuplicatePolicy(*duplicates)
	if err != nil {
		return err
	}

	src := stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var in model.Input
	if err := json.NewDecoder(src).Decode(&in); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	logger := logging.New(logging.Config{Level: *logLevel, Format: "text", Service: "freightpath-solve", Output: stderr})
	planner := routing.NewPlanner(routing.NewRouter(*workers, logger, nil), policy, logger, nil)

	out, err := planner.Plan(ctx, in)
	if err != nil {
		return err
	}

	dst := stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
