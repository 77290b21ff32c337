package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"calltree/callgraph"
	"calltree/callgraph/contracts"
	"calltree/config"
	"calltree/constants/lipgloss"
	"calltree/search"
	"calltree/utils"
)

// effectively unbounded depth when --depth is not given
const defaultDepth = 1 << 20

// RootDependencies wires the collaborators every command needs.
type RootDependencies struct {
	Config   *config.Config
	Cwd      string
	Searcher contracts.ISearcher
	Analyzer contracts.IAnalyzer
}

// rootCmd: calltree <name_or_pattern> [filter]
var rootCmd = &cobra.Command{
	Use:   "calltree <name_or_pattern> [filter]",
	Short: "Render the transitive caller or callee hierarchy of a function as an ASCII tree.",
	Long: `calltree recovers an approximate function-call graph from a C/C++-like
source tree using regular-expression heuristics (no compiler, no AST) and
renders, on demand, the transitive caller or callee hierarchy of a chosen
function as an indented tree, bounded by depth and filtered by a name pattern.

The first argument names the function to trace; a key of the call graph is
used exactly, anything else is treated as a name pattern whose matches each
become a subtree. The optional second argument is a regex that prunes the
tree: only branches ending in a matching leaf survive.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		handleTraceCommand(cmd, args, rootDependencies)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)

	rootCmd.Flags().Int("direction", 0, "Traversal direction: 0 walks callers (who calls this), any other value walks callees (what does this call).")
	rootCmd.Flags().Int("verbose", 0, "Any non-zero value appends [path:line] location suffixes to tree nodes.")
	rootCmd.Flags().Int("depth", defaultDepth, "Maximum tree depth; branches are cut with a depth-limit leaf beyond it.")
}

// handleRootCommand builds the shared dependency set. A missing search
// collaborator is fatal with exit code 1.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		os.Exit(1)
	}

	cfg := config.LoadConfigs(cmd.Root(), cwd)

	searcher, err := search.NewRipgrepSearcher(cwd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	analyzer, err := callgraph.NewAnalyzer(cwd, searcher, callgraph.Options{
		Extensions:       cfg.Extensions,
		IgnoreGlobs:      cfg.IgnoreGlobs,
		Blacklist:        cfg.Blacklist,
		TrivialThreshold: cfg.TrivialThreshold,
		LengthThreshold:  cfg.LengthThreshold,
		Workers:          cfg.Workers,
		CacheDir:         cfg.CacheDir,
		EnableCache:      cfg.EnableCache,
	})
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error initializing analyzer: %v", err)))
		os.Exit(1)
	}

	return &RootDependencies{
		Config:   cfg,
		Cwd:      cwd,
		Searcher: searcher,
		Analyzer: analyzer,
	}
}

func handleTraceCommand(cmd *cobra.Command, args []string, rootDependencies *RootDependencies) {
	name := args[0]
	filterPattern := ".*"
	if len(args) > 1 {
		filterPattern = args[1]
	}
	filter, err := regexp.Compile(filterPattern)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Invalid filter pattern %q: %v", filterPattern, err)))
		os.Exit(1)
	}

	directionFlag, _ := cmd.Flags().GetInt("direction")
	verbose, _ := cmd.Flags().GetInt("verbose")
	depth, _ := cmd.Flags().GetInt("depth")

	direction := callgraph.DirectionCallers
	if directionFlag != 0 {
		direction = callgraph.DirectionCallees
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Interrupted runs must never leave sanitized files behind. The
	// recovery sweep waits on pipelineDone so it cannot race a sanitizer
	// worker that is between backing a file up and rewriting it.
	pipelineDone := make(chan struct{})
	go utils.GracefulShutdown(ctx, pipelineDone, func() {
		_ = callgraph.RecoverBackups(rootDependencies.Cwd)
	})

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)
	spinnerBuild, _ := spinner.Start("Building call graph...")

	graph, err := rootDependencies.Analyzer.Graph(ctx)
	spinnerBuild.Stop()
	fmt.Print("\r")
	close(pipelineDone)
	if ctx.Err() != nil {
		// Signal-triggered: the shutdown goroutine restores and exits 0.
		select {}
	}
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	engine := callgraph.NewQueryEngine(graph, filter, depth, direction)
	tree, err := engine.Query(name)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	fmt.Print(callgraph.RenderTree(tree, verbose != 0))
}
