package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/analysis"
	"github.com/raphaelgruber/postcraft/internal/drafts"
)

var draftsLimit int

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Review generated drafts",
	Long: `List and show the drafts saved under paths.output.

Examples:
  postcraft drafts list
  postcraft drafts list --limit 5
  postcraft drafts show draft_manual_code-review_20251001_140509.md`,
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDraftsList,
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsShow,
}

func init() {
	draftsListCmd.Flags().IntVarP(&draftsLimit, "limit", "l", 20, "maximum drafts to list (0 for all)")

	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	list, err := drafts.NewStore(cfg.Paths.Output).List()
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No drafts found.")
		return nil
	}

	shown := list
	if draftsLimit > 0 && len(shown) > draftsLimit {
		shown = shown[:draftsLimit]
	}
	fmt.Fprintf(out, "Drafts (%d of %d):\n\n", len(shown), len(list))
	for _, d := range shown {
		label := d.Topic
		if d.Context != "" {
			label = "context " + d.Context
		}
		if d.Variant != "" {
			label += " [" + d.Variant + "]"
		}
		fmt.Fprintf(out, "  %s  %s\n", d.CreatedAt.Local().Format("2006-01-02 15:04"), label)
		fmt.Fprintf(out, "    %s\n", defaultTheme.hintStyle().Render(analysis.Preview(d.Body, 70)))
		fmt.Fprintf(out, "    %s\n", d.Path)
	}
	return nil
}

func runDraftsShow(cmd *cobra.Command, args []string) error {
	d, err := drafts.NewStore(cfg.Paths.Output).Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		_, err := io.WriteString(out, drafts.Markdown(*d))
		return err
	}
	rendered, err := drafts.Render(*d, min(terminalWidth(out, 80), 100))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
