package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PentesterFlow/ParamCrawler/pkg/crawler"
)

var version = "1.0.0"

// flags holds the raw command-line values.
type flags struct {
	configFile string
	verbose    bool
	debug      bool
	noBanner   bool

	urls      []string
	threads   int
	delay     float64
	timeout   int
	depth     int
	selenium  bool
	output    string
	retries   int
	rateLimit float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newCommand(&flags{})
}

func newCommand(f *flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paramcrawler -u <url> [-u <url>...]",
		Short: "ParamCrawler - Parameter Discovery Crawler",
		Long: `ParamCrawler - crawls seed URLs breadth-first and lists the input parameter
names found on every page reached.`,
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, f)
		},
	}

	rootCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.Flags().BoolVar(&f.debug, "debug", false, "Debug mode")
	rootCmd.Flags().BoolVar(&f.noBanner, "no-banner", false, "Do not print the banner")

	rootCmd.Flags().StringArrayVarP(&f.urls, "url", "u", nil, "Seed URL to crawl (repeat for more seeds)")
	rootCmd.Flags().IntVarP(&f.threads, "threads", "t", 5, "Number of seeds crawled concurrently")
	rootCmd.Flags().Float64VarP(&f.delay, "delay", "d", 0, "Delay between pages in seconds")
	rootCmd.Flags().IntVar(&f.timeout, "timeout", 15, "Request timeout in seconds")
	rootCmd.Flags().IntVar(&f.depth, "depth", 1, "Maximum crawl depth")
	rootCmd.Flags().BoolVar(&f.selenium, "selenium", false, "Render pages in a headless browser")
	rootCmd.Flags().StringVar(&f.output, "output", "", "Append found parameters to this file")
	rootCmd.Flags().IntVar(&f.retries, "retries", 3, "HTTP attempts per URL")
	rootCmd.Flags().Float64Var(&f.rateLimit, "rate-limit", 0, "Requests per second (0 = unlimited)")

	return rootCmd
}

// buildConfig starts from the config file, or defaults, and applies every
// flag the user set explicitly.
func buildConfig(cmd *cobra.Command, f *flags) (*crawler.Config, error) {
	config := crawler.DefaultConfig()
	if f.configFile != "" {
		fileConfig, err := crawler.LoadFromFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		config = fileConfig
	}

	changed := cmd.Flags().Changed
	if changed("url") {
		config.Seeds = f.urls
	}
	if changed("threads") {
		config.Workers = f.threads
	}
	if changed("delay") {
		if f.delay < 0 {
			return nil, fmt.Errorf("delay cannot be negative")
		}
		config.Delay = time.Duration(f.delay * float64(time.Second))
	}
	if changed("timeout") {
		config.Timeout = time.Duration(f.timeout) * time.Second
	}
	if changed("depth") {
		config.MaxDepth = f.depth
	}
	if changed("selenium") {
		config.UseBrowser = f.selenium
	}
	if changed("output") {
		config.Output = f.output
	}
	if changed("retries") {
		config.MaxRetries = f.retries
	}
	if changed("rate-limit") {
		config.RateLimit.RequestsPerSecond = f.rateLimit
	}
	if changed("verbose") {
		config.Verbose = f.verbose
	}
	if changed("debug") {
		config.Debug = f.debug
	}

	if len(config.Seeds) == 0 {
		return nil, fmt.Errorf("required flag \"url\" not set")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runCrawl(cmd *cobra.Command, f *flags) error {
	config, err := buildConfig(cmd, f)
	if err != nil {
		return err
	}

	c, err := crawler.New(crawler.WithConfig(config))
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			cancel()
		case <-ctx.Done():
		}
	}()

	if !f.noBanner {
		printBanner(cmd.OutOrStdout(), config)
	}

	if _, err := c.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	return nil
}

func printBanner(w io.Writer, config *crawler.Config) {
	mode := "http"
	if config.UseBrowser {
		mode = "browser"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                      ParamCrawler v1.0                       ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Seeds:      %d\n", len(config.Seeds))
	fmt.Fprintf(w, "Threads:    %d\n", config.Workers)
	fmt.Fprintf(w, "Max Depth:  %d\n", config.MaxDepth)
	fmt.Fprintf(w, "Delay:      %v\n", config.Delay)
	fmt.Fprintf(w, "Fetch Mode: %s\n", mode)
	fmt.Fprintln(w)
}
