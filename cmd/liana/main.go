package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jward/liana"
	"github.com/jward/liana/internal/config"
)

var (
	flagExcludePrefixes string
	flagExcludePaths    string
	flagConfig          string
	flagLookup          string
	flagPoll            time.Duration
	flagNoColor         bool
	flagVerbose         bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "liana [flags] file.cpp|compile_commands.json [-- extra clang args...]",
	Short: "Interactive call-graph explorer for C/C++ codebases",
	Long: "Liana parses a compilation database (or a single source file) with " +
		"tree-sitter, builds a call graph, and drops into an interactive query " +
		"prompt. Changed files are re-aggregated in the background.",
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagExcludePrefixes, "exclude", "x", "", "comma-separated qualified-name prefixes to hide (e.g. std::,boost::)")
	rootCmd.Flags().StringVarP(&flagExcludePaths, "exclude-paths", "p", "", "comma-separated source-path prefixes to hide (default /usr)")
	rootCmd.Flags().StringVar(&flagConfig, "cfg", "", "YAML config file (clang_args, excluded_prefixes, excluded_paths)")
	rootCmd.Flags().StringVar(&flagLookup, "lookup", "", "run a single query and exit instead of entering the prompt")
	rootCmd.Flags().DurationVar(&flagPoll, "poll", 2*time.Second, "change-monitor poll interval")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable ANSI colors in query output")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log parsing progress")
}

func run(cmd *cobra.Command, args []string) error {
	dbPath := args[0]
	extraArgs := args[1:]

	excl := liana.Exclusions{
		Paths:    splitList(flagExcludePaths),
		Prefixes: splitList(flagExcludePrefixes),
	}
	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		extraArgs = append(extraArgs, cfg.ClangArgs...)
		excl.Prefixes = append(excl.Prefixes, cfg.ExcludedPrefixes...)
		excl.Paths = append(excl.Paths, cfg.ExcludedPaths...)
	}
	if len(excl.Paths) == 0 {
		excl.Paths = []string{"/usr"}
	}

	log := zerolog.Nop()
	if flagVerbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	engine := liana.New(
		liana.WithExclusions(excl),
		liana.WithLogger(log),
		liana.WithPollInterval(flagPoll),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Println("user exit.")
		os.Exit(0)
	}()

	if err := engine.LoadAll(ctx, dbPath, extraArgs); err != nil {
		return err
	}
	engine.StartMonitor(ctx)

	session := engine.NewSession(newStyler(flagNoColor))
	session.ShowTotals = flagLookup == ""

	if flagLookup != "" {
		if out := session.Direct(flagLookup); out != "" {
			fmt.Println(out)
		}
		return nil
	}
	return repl(session, os.Stdin, os.Stdout)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
