// policyledger manages insurance customer/policy records and their premiums.
//
// Usage:
//
//	policyledger add --name=<name> --age=<n> --type=<life|health|auto> --sum-insured=<x> [--vehicle-age=<n>]
//	policyledger list
//	policyledger show <id>
//	policyledger update <id> [--name] [--age] [--type] [--sum-insured] [--vehicle-age]
//	policyledger delete <id>
//	policyledger premium <id>
//	policyledger import <file.json>
//	policyledger export --out=<file> [--format=xlsx|json|yaml]
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stevemurr/policyledger/config"
	"github.com/stevemurr/policyledger/logging"
	"github.com/stevemurr/policyledger/store"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "policyledger",
		Short:         "Insurance customer/policy records with premium calculation",
		Long:          "policyledger keeps customer/policy records in a local dataset\nand computes premiums from a fixed rate table.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			level, _ := logging.ParseLevel(cfg.LogLevel)
			logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
			opts.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Config file (default: search ./config.yaml, ~/.config/policyledger)")
	pf.String("data-dir", "", "Directory holding the dataset")
	pf.String("backend", "", "Storage backend: flat, json, sqlite, memory")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.Int("max-records", 0, "Maximum number of records (0 = unlimited)")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newPremiumCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// withRecords opens and loads the configured store, runs fn, then performs
// the shutdown persist. A failing final persist is reported, not returned.
func withRecords(cmd *cobra.Command, opts *rootOptions, fn func(*store.Records) error) error {
	log := logging.New("cli")
	backend, err := store.New(opts.cfg.Backend, opts.cfg.DataDir)
	if err != nil {
		return err
	}
	records := store.NewRecords(backend,
		store.WithLogger(logging.New("store")),
		store.WithMaxRecords(opts.cfg.MaxRecords),
	)
	report, err := records.Load()
	if err != nil {
		backend.Close()
		return err
	}
	if report.Partial {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: read %d records, discarded %d trailing bytes.\n", report.Loaded, report.DiscardedBytes)
	}

	runErr := fn(records)
	if err := records.Close(); err != nil {
		log.Warn("shutdown persist failed", slog.Any("error", err))
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	return runErr
}

// warnIfNotDurable turns a storage failure after a mutation into a warning.
func warnIfNotDurable(cmd *cobra.Command, err error) error {
	if errors.Is(err, store.ErrStorageUnavailable) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: change kept in memory only: %v\n", err)
		return nil
	}
	return err
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
