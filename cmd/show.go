package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"

	"calltree/constants/lipgloss"
)

// showCmd prints the extracted source of a function definition.
var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the source of every matched definition of a function",
	Long: `The 'show' command locates every function definition whose qualified or
simple name equals the given name and prints its source with syntax
highlighting. The lookup runs over the original (unsanitized) sources, so
the printed text is exactly what is on disk.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		handleShowCommand(args[0], rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func handleShowCommand(name string, rootDependencies *RootDependencies) {
	defs, err := rootDependencies.Analyzer.FindDefinitions(name)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
	if len(defs) == 0 {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No definition of %q found.", name)))
		return
	}

	for i, def := range defs {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("%s\t[%s:%d]", def.QualifiedName, def.Path, def.Line)))
		if err := quick.Highlight(os.Stdout, def.Body, "c++", "terminal256", rootDependencies.Config.Theme); err != nil {
			// Highlighting is cosmetic; fall back to plain text.
			fmt.Println(def.Body)
		}
		fmt.Println()
	}
}
