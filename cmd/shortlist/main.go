package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/shortlist/internal/submit"
)

const defaultTimeout = 2 * time.Minute

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		jobID   = flag.String("job", "", "Job ID the CVs are screened against")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		submit.ShowHelp(os.Stdout)
		return
	}

	if err := submit.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &submit.Config{
		BaseURL: *baseURL,
		JobID:   *jobID,
		Files:   flag.Args(),
		Timeout: *timeout,
		Verbose: *verbose,
	}

	if err := submit.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("Submit failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
