package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type command struct {
	summary string
	run     func(ctx context.Context, args []string) error
}

var commands = map[string]command{
	"clean":       {"Erase noise pixels from images", runClean},
	"train-bayes": {"Label random pixels to train the Naive-Bayes model", runTrainBayes},
	"sample":      {"Label random pixels and append feature rows to a sample file", runSample},
	"fit":         {"Fit a logistic model on a sample file", runFit},
	"ocr":         {"Read the letters of (cleaned) images with Tesseract", runOCR},
	"report":      {"Render a histogram of letter probabilities for an image", runReport},
	"serve":       {"Run the MCP server on stdin/stdout", runServe},
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	name, args := os.Args[1], os.Args[2:]
	switch name {
	case "--version", "-v", "version":
		fmt.Printf("letter-denoise %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage(os.Stdout)
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "letter-denoise: unknown command %q\n\n", name)
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "letter-denoise %s: %v\n", name, err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "letter-denoise - remove stray noise pixels from letter images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: letter-denoise <command> [-config file.yaml] [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-12s %s\n", n, commands[n].summary)
	}
	fmt.Fprintf(w, "  %-12s %s\n", "version", "Print version information")
	fmt.Fprintf(w, "  %-12s %s\n", "help", "Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'letter-denoise <command> -h' for the options of a command.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  LETTER_DENOISE_LOG_LEVEL=debug    Override the configured log level")
}
