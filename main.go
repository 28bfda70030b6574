package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-annotated-container/framework/app"
	"github.com/km-arc/go-annotated-container/framework/definition"
	"github.com/km-arc/go-annotated-container/framework/resolution"
	"github.com/km-arc/go-annotated-container/framework/serializer"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are shared by every sub-command.
type globalOptions struct {
	envFiles   []string
	configFile string
	sources    []string
}

// application builds a fresh Application, applying --source over the
// configured scan sources.
func (o *globalOptions) application(cmd *cobra.Command) (*app.Application, error) {
	a := app.New(app.Options{
		EnvFiles:   o.envFiles,
		ConfigFile: o.configFile,
		LogOutput:  cmd.ErrOrStderr(),
	})
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	if len(o.sources) > 0 {
		cfg.Analysis.Sources = o.sources
	}
	return a, nil
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "annotated-container",
		Short:        "Analyze container declarations into a container definition",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, ".env files to load (default .env)")
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringSliceVarP(&opts.sources, "source", "s", nil, "scan source, repeatable; overrides CONTAINER_SCAN_SOURCES")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newResolveCommand(opts),
		newServeCommand(opts),
		newCacheCommand(opts),
	)
	return root
}

// ── analyze ──────────────────────────────────────────────────────────────────

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	var (
		format   string
		profiles []string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the container definition",
		Long: `Print the analyzed container definition.

Without --profiles the whole definition is printed. With --profiles only
what is visible under those profiles is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}
			a, err := opts.application(cmd)
			if err != nil {
				return err
			}

			var def definition.ContainerDefinition
			if len(profiles) > 0 {
				view, err := a.View(cmd.Context(), profiles)
				if err != nil {
					return err
				}
				def = view.ContainerDefinition()
			} else if def, err = a.Analyze(cmd.Context()); err != nil {
				return err
			}
			return printDefinition(cmd.OutOrStdout(), def, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringSliceVarP(&profiles, "profiles", "p", nil, "active profiles to filter by")
	return cmd
}

func printDefinition(w io.Writer, def definition.ContainerDefinition, format string) error {
	data, err := serializer.Serialize(def)
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	// JSON is YAML; re-encoding keeps the field names of the JSON document.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// ── resolve ──────────────────────────────────────────────────────────────────

func newResolveCommand(opts *globalOptions) *cobra.Command {
	var profiles []string
	cmd := &cobra.Command{
		Use:   "resolve <abstract>",
		Short: "Show which concrete service satisfies an abstract service",
		Long: `Show which concrete service satisfies an abstract service.

Exits non-zero when no concrete service, or no single primary one, is
available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application(cmd)
			if err != nil {
				return err
			}
			abstract := args[0]
			res, err := a.ResolveAlias(cmd.Context(), abstract, profiles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch res.Reason {
			case resolution.SingleConcreteService, resolution.ConcreteServiceIsPrimary:
				fmt.Fprintf(out, "%s -> %s (%s)\n", abstract, res.Alias.ConcreteService, res.Reason)
			default:
				fmt.Fprintf(out, "%s (%s)\n", abstract, res.Reason)
			}
			_, err = res.Require(abstract)
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&profiles, "profiles", "p", nil, "active profiles (default: CONTAINER_PROFILES)")
	return cmd
}

// ── serve ────────────────────────────────────────────────────────────────────

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only definition explorer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.application(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

// ── cache ────────────────────────────────────────────────────────────────────

func newCacheCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the definition cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the cached definition for the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.application(cmd)
			if err != nil {
				return err
			}
			cleared, err := a.ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			if !cleared {
				fmt.Fprintln(cmd.OutOrStdout(), "cache driver is none, nothing to clear")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "definition cache cleared")
			return nil
		},
	})
	return cmd
}
