// Package main provides the owlgraph binary entry point.
// Owlgraph loads OWL ontologies into an embedded property graph.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/owlgraph/config"
	"github.com/c360studio/owlgraph/engine"
	"github.com/c360studio/owlgraph/export"
	"github.com/c360studio/owlgraph/loader"
	"github.com/c360studio/owlgraph/storage"

	// Register load-event predicates via init()
	_ "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "owlgraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by subcommands after flag parsing.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "OWL ontology to property graph loader",
		Long: `Owlgraph translates OWL ontologies into a property graph.

It provides:
- Batch and transactional graph engines over an embedded SQLite store
- Reasoner-driven pruning and inferred subclass edges
- Existential shortcut edges and category propagation after each load
- RDF export and full-text search of the produced graph

Configuration is read from --config, ./owlgraph.yaml (searched upward)
and ~/.config/owlgraph/config.yaml.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "init":
				return nil
			}
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		loadCmd(a),
		watchCmd(a),
		exportCmd(a),
		searchCmd(a),
		initCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	switch strings.ToLower(a.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, err := config.NewLoader(a.logger).Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

func loadCmd(a *app) *cobra.Command {
	var engineKind string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the configured ontologies into the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			if engineKind != "" {
				a.cfg.Graph.Engine = engineKind
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			l, closeFn, err := a.newLoader(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := a.loadOnce(cmd.Context(), l)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&engineKind, "engine", "", "Override the graph engine (batch, transactional)")
	return cmd
}

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Load the ontologies, then reload whenever a document changes",
		Long: `Watch performs an initial load and then watches every configured
ontology path. Reloads always use the transactional engine, which merges
into the existing graph.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Batch loads require an empty store.
			if engine.Kind(a.cfg.Graph.Engine) == engine.KindBatch {
				empty, err := storeIsEmpty(ctx, a.cfg.Graph.Location)
				if err != nil {
					return err
				}
				if !empty {
					a.logger.Info("Graph store is not empty, using the transactional engine",
						"location", a.cfg.Graph.Location)
					a.cfg.Graph.Engine = string(engine.KindTransactional)
				}
			}

			l, closeFn, err := a.newLoader(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := a.loadOnce(ctx, l)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			a.cfg.Graph.Engine = string(engine.KindTransactional)

			patterns := make([]string, 0, len(a.cfg.Ontologies))
			for _, o := range a.cfg.Ontologies {
				patterns = append(patterns, o.Path)
			}
			w, err := loader.NewWatcher(loader.WatcherConfig{Patterns: patterns, Logger: a.logger})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}

			return w.Run(ctx, func(ctx context.Context, changed []string) error {
				stats, err := a.loadOnce(ctx, l)
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		formatName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the graph as RDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatName == "" {
				formatName = string(export.FormatTurtle)
				if ext := filepath.Ext(output); ext != "" {
					formatName = ext
				}
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			store, err := storage.Open(a.cfg.Graph.Location, storage.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer store.Close()

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			_, err = export.New(store,
				export.WithPrefixes(a.cfg.Curies),
				export.WithLogger(a.logger)).Export(cmd.Context(), w, format)
			return err
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Output format (turtle, ntriples); defaults from the output extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over indexed node properties",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(a.cfg.Graph.Location, storage.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			return store.View(cmd.Context(), func(tx *storage.Tx) error {
				hits, err := tx.Search(strings.Join(args, " "), limit)
				if err != nil {
					return err
				}
				if len(hits) == 0 {
					fmt.Fprintln(out, "No matches")
					return nil
				}
				for _, h := range hits {
					key, err := tx.NodeKey(h.NodeID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\t%s\t%s\n", key, h.Property, h.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of matches")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default user configuration if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			path, created, err := config.NewLoader(logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}
}

// newLoader builds the loader, connecting the load-event publisher when NATS
// is configured. The returned func releases the connection.
func (a *app) newLoader(ctx context.Context) (*loader.Loader, func(), error) {
	opts := []loader.Option{loader.WithLogger(a.logger)}
	closeFn := func() {}

	if a.cfg.NATS.URL != "" {
		pub, err := loader.ConnectNATS(ctx, a.cfg.NATS.URL, a.cfg.NATS.Subject, a.logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, loader.WithPublisher(pub))
		closeFn = func() { pub.Close(context.Background()) }
	}
	return loader.New(a.cfg, opts...), closeFn, nil
}

// loadOnce rereads every configured document and loads the set.
func (a *app) loadOnce(ctx context.Context, l *loader.Loader) (*loader.LoadStats, error) {
	set, roots, docs, err := loader.ReadOntologies(a.cfg.Ontologies)
	if err != nil {
		return nil, fmt.Errorf("read ontologies: %w", err)
	}
	if len(docs) == 0 {
		return nil, errors.New("no ontology documents matched the configured paths")
	}
	a.logger.Debug("Read ontology documents", "documents", docs)
	return l.Load(ctx, set, roots...)
}

func storeIsEmpty(ctx context.Context, location string) (bool, error) {
	store, err := storage.Open(location)
	if err != nil {
		return false, err
	}
	defer store.Close()
	return store.IsEmpty(ctx)
}

func printStats(w io.Writer, s *loader.LoadStats) {
	fmt.Fprintf(w, "✓ Load %s complete\n", s.RunID)
	fmt.Fprintf(w, "  Nodes:          %d\n", s.NodeCount)
	fmt.Fprintf(w, "  Relationships:  %d\n", s.EdgeCount)
	fmt.Fprintf(w, "  Axioms:         %d\n", s.Translation.Axioms)
	fmt.Fprintf(w, "  Reasoned:       %t\n", s.Reasoned)
	if s.ShortcutEdges > 0 {
		fmt.Fprintf(w, "  Shortcut edges: %d\n", s.ShortcutEdges)
	}
	categories := make([]string, 0, len(s.Categories))
	for category := range s.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(w, "  Category %s: %d nodes\n", category, s.Categories[category])
	}
	if skipped := s.SkippedValues + s.Translation.NonEnglish + s.Translation.BadLiterals; skipped > 0 {
		fmt.Fprintf(w, "  Skipped values: %d\n", skipped)
	}
}
