// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"doc-sentry/internal/config"
	"doc-sentry/internal/docstore"
	"doc-sentry/internal/observability"
	"doc-sentry/internal/orchestrator"
	"doc-sentry/internal/version"

	"doc-sentry/internal/formatters"
	_ "doc-sentry/internal/formatters/json"
	_ "doc-sentry/internal/formatters/text"
	_ "doc-sentry/internal/formatters/yaml"
)

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	// Load configuration (will use defaults if file not found)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("") // Load default config
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	outputFormat string
	categories   string
	alert        bool
	visibility   string
	verbose      bool
	debug        bool
	noColor      bool
	baseURL      string
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format     string
	categories string
	alert      bool
	visibility string
	verbose    bool
	debug      bool
	noColor    bool
	baseURL    string
}

// resolveConfiguration resolves final configuration values from config file, profile, and command line flags
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "text" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Categories
	final.categories = "all" // default fallback
	if cfg != nil && cfg.Defaults.Categories != "" {
		final.categories = cfg.Defaults.Categories
	}
	if activeProfile != nil && activeProfile.Categories != "" {
		final.categories = activeProfile.Categories
	}
	if isFlagSet("categories") && flags.categories != "" {
		final.categories = flags.categories
	}

	// Alert
	final.alert = false // default fallback
	if cfg != nil {
		final.alert = cfg.Defaults.Alert
	}
	if activeProfile != nil {
		final.alert = activeProfile.Alert
	}
	if isFlagSet("alert") {
		final.alert = flags.alert
	}

	// Visibility
	final.visibility = "private" // default fallback
	if cfg != nil && cfg.Defaults.Visibility != "" {
		final.visibility = cfg.Defaults.Visibility
	}
	if activeProfile != nil && activeProfile.Visibility != "" {
		final.visibility = activeProfile.Visibility
	}
	if isFlagSet("visibility") && flags.visibility != "" {
		final.visibility = flags.visibility
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil {
		final.verbose = activeProfile.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil {
		final.debug = activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil {
		final.noColor = activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	// Store base URL
	if cfg != nil {
		final.baseURL = cfg.Store.BaseURL
	}
	if isFlagSet("base-url") && flags.baseURL != "" {
		final.baseURL = flags.baseURL
	}

	return final
}

func main() {
	documents := flag.String("documents", "", "Comma-separated document ids to scan in the hosted store")
	localFiles := flag.String("local", "", "Comma-separated local PDF files to scan instead of the hosted store")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	outputFormat := flag.String("format", "", "Output format: text, json, yaml (default: text)")
	categories := flag.String("categories", "", "PII categories to detect: "+strings.Join(config.CategoryNames(), ", ")+", or 'all'")
	alert := flag.Bool("alert", false, "Send a notification when PII is detected")
	visibility := flag.String("visibility", "", "Annotation visibility: private, organization, public (default: private)")
	baseURL := flag.String("base-url", "", "Document store base URL (overrides config)")
	verbose := flag.Bool("verbose", false, "Display detailed information for each document")
	debug := flag.Bool("debug", false, "Enable debug logging of store calls and page processing")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	cfg := loadConfiguration(*configFile)

	if *listProfiles {
		fmt.Println("Available profiles:")
		for _, name := range cfg.ListProfiles() {
			profile := cfg.GetProfile(name)
			fmt.Printf("  %s: %s\n", name, profile.Description)
		}
		return
	}

	var activeProfile *config.Profile
	if *profileName != "" {
		activeProfile = cfg.GetProfile(*profileName)
		if activeProfile == nil {
			fmt.Fprintf(os.Stderr, "Error: profile %q not found. Available profiles: %s\n",
				*profileName, strings.Join(cfg.ListProfiles(), ", "))
			os.Exit(2)
		}
	}

	final := resolveConfiguration(cfg, activeProfile, &configFlags{
		outputFormat: *outputFormat,
		categories:   *categories,
		alert:        *alert,
		visibility:   *visibility,
		verbose:      *verbose,
		debug:        *debug,
		noColor:      *noColor,
		baseURL:      *baseURL,
	})

	// Disable colors when output is redirected
	if !isTerminal(os.Stdout) {
		final.noColor = true
	}

	vis, err := docstore.ParseVisibility(final.visibility)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level := observability.ObservabilityMetrics
	if final.debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, documentIDs, localStore, err := buildStore(cfg, final, *documents, *localFiles, observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	runConfig := orchestrator.RunConfig{
		Categories: config.ParseCategories(final.categories),
		Alert:      final.alert,
		Visibility: vis,
	}

	report, err := orchestrator.New(store, observer).Run(ctx, documentIDs, runConfig)
	if err != nil {
		if orchestrator.IsConfigurationError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		os.Exit(1)
	}

	if localStore != nil {
		if err := localStore.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: writing annotation sidecars: %v\n", err)
		}
		for _, note := range localStore.Notifications() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", note.Subject, note.Body)
		}
	}

	output, err := formatters.Export(final.format, report, formatters.FormatterOptions{
		Verbose: final.verbose,
		NoColor: final.noColor,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing output file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}

// buildStore selects the hosted store client or the local PDF store and
// returns the document ids to scan against it.
func buildStore(cfg *config.Config, final *finalConfiguration, documents, localFiles string, observer *observability.StandardObserver) (docstore.Store, []string, *docstore.LocalStore, error) {
	if localFiles != "" {
		if documents != "" {
			return nil, nil, nil, fmt.Errorf("-documents and -local are mutually exclusive")
		}
		localStore, err := docstore.NewLocalStore(splitList(localFiles))
		if err != nil {
			return nil, nil, nil, err
		}
		return localStore, localStore.DocumentIDs(), localStore, nil
	}

	if final.baseURL == "" {
		return nil, nil, nil, fmt.Errorf("no document store configured: set store.base_url in config or pass -base-url")
	}

	clientConfig := docstore.DefaultClientConfig()
	clientConfig.BaseURL = final.baseURL
	clientConfig.Token = cfg.ResolveToken()
	clientConfig.Timeout = cfg.StoreTimeout()
	if cfg.Store.RequestsPerSecond > 0 {
		clientConfig.RequestsPerSecond = cfg.Store.RequestsPerSecond
	}
	if cfg.Store.Burst > 0 {
		clientConfig.Burst = cfg.Store.Burst
	}
	return docstore.NewClient(clientConfig, observer), splitList(documents), nil, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
