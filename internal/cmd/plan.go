package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/services"
	"github.com/rebasekit/rebasekit/internal/tui"
)

var planRepoPath string

var planCmd = &cobra.Command{
	Use:   "plan <onto-ref>",
	Short: "Edit and execute a rebase plan interactively",
	Long: `# rebasekit plan

Opens the plan editor for the commits between **<onto-ref>** and HEAD.
Reorder commits, assign actions, and execute the rebase when the preview
is clean. The rebase itself runs through git, so a conflict leaves the
repository mid-rebase for you to resolve with
` + "`git rebase --continue`" + ` or ` + "`git rebase --abort`" + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanEditor(planRepoPath, args[0])
	},
}

func init() {
	planCmd.Flags().StringVarP(&planRepoPath, "repo", "r", ".", "path to the git repository")
	rootCmd.AddCommand(planCmd)
}

func runPlanEditor(repoPath, ontoRef string) error {
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

	if len(session.Plan) == 0 {
		fmt.Printf("No commits between %s and HEAD.\n", ontoRef)
		return nil
	}

	final, err := tui.Run(service, session.ID)
	if err != nil {
		return err
	}
	if final.Executed() {
		fmt.Println("Rebase completed.")
	} else if final.Err() != nil {
		return final.Err()
	}
	return nil
}
