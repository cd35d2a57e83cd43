package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/services"
	"github.com/rebasekit/rebasekit/internal/tui/components"
)

var (
	previewRepoPath   string
	previewAutosquash bool
	previewPlanText   bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <onto-ref>",
	Short: "Print the rebase preview without editing",
	Long: `# rebasekit preview

Prints the default rebase plan for the commits between **<onto-ref>** and
HEAD, without opening the editor. With **--autosquash** the plan is first
rewritten to fold ` + "`fixup!`/`squash!`" + ` commits into their targets, which is
the quickest way to check what ` + "`git rebase --autosquash`" + ` would do.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(previewRepoPath, args[0])
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewRepoPath, "repo", "r", ".", "path to the git repository")
	previewCmd.Flags().BoolVar(&previewAutosquash, "autosquash", false, "apply autosquash before previewing")
	previewCmd.Flags().BoolVar(&previewPlanText, "plan-text", false, "print the raw instruction list instead")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(repoPath, ontoRef string) error {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return err
	}

	service := services.NewRebaseService(git.NewOperations())
	session, err := service.CreateSession(absPath, ontoRef)
	if err != nil {
		return err
	}
	defer service.CloseSession(session.ID) //nolint:errcheck

	if previewAutosquash {
		result, err := service.Autosquash(session.ID)
		if err != nil {
			return err
		}
		for _, shortID := range result.Unmatched {
			fmt.Println(components.MutedStyle.Render(
				fmt.Sprintf("no autosquash target for %s, kept as pick", shortID)))
		}
	}

	if previewPlanText {
		text, err := service.PlanText(session.ID)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	preview, err := service.Preview(session.ID)
	if err != nil {
		return err
	}
	for _, row := range preview {
		if row.Error != "" {
			fmt.Println(components.ErrorStyle.Render(
				fmt.Sprintf("%s %s", row.ShortID, row.Error)))
			continue
		}
		line := fmt.Sprintf("%s %s", components.HashStyle.Render(row.ShortID), row.Summary)
		if len(row.SquashedFrom) > 0 {
			line += components.MutedStyle.Render(fmt.Sprintf(" (+%d squashed)", len(row.SquashedFrom)))
		}
		fmt.Println(line)
	}

	stats, err := service.Stats(session.ID)
	if err != nil {
		return err
	}
	fmt.Println(components.MutedStyle.Render(fmt.Sprintf(
		"%d kept, %d squashed, %d dropped, %d reworded",
		stats.Kept, stats.Squashed, stats.Dropped, stats.Reworded)))
	return nil
}
