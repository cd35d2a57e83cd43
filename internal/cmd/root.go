// Package cmd defines the rebasekit CLI.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/rebasekit/rebasekit/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "rebasekit",
	Short: "Interactive rebase planning for git repositories",
	Long: `# rebasekit

**Build, preview, and execute interactive rebase plans.**

## Features

- **Plan editor TUI** with reordering, action assignment, and live preview
- **Autosquash** that relocates ` + "`fixup!`/`squash!`" + ` commits next to their targets
- **Validation** that refuses plans with orphaned squash/fixup entries
- **HTTP API** for driving rebase sessions from other tools

Run **rebasekit plan <onto-ref>** inside a repository to start editing.`,
}

// Execute runs the CLI.
func Execute() {
	logger.Configure(logger.LevelFromEnv(), true)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderMarkdownHelp(cmd)
	})
}

// renderMarkdownHelp renders command help through glamour, falling back to
// cobra's plain help when the terminal renderer cannot be built.
func renderMarkdownHelp(cmd *cobra.Command) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long + "\n\n")
	} else if cmd.Short != "" {
		help.WriteString("# " + cmd.Short + "\n\n")
	}

	help.WriteString("## Usage\n\n```bash\n" + cmd.UseLine() + "\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		help.WriteString("## Commands\n\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				help.WriteString(fmt.Sprintf("- **%s** - %s\n", sub.Name(), sub.Short))
			}
		}
		help.WriteString("\n")
	}

	if cmd.HasAvailableFlags() {
		if usages := cmd.Flags().FlagUsages(); usages != "" {
			help.WriteString("## Flags\n\n```\n" + usages + "```\n\n")
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(cmd.UsageString())
		return
	}
	rendered, err := renderer.Render(help.String())
	if err != nil {
		fmt.Print(cmd.UsageString())
		return
	}
	fmt.Print(rendered)
}
