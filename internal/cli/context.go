package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/postcraft/internal/contexts"
	"github.com/raphaelgruber/postcraft/internal/models"
	"github.com/raphaelgruber/postcraft/internal/prompt"
)

var (
	contextDeleteForce bool
	contextCoverAngle  string
	contextShowRaw     bool
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage topic contexts for context-mode generation",
	Long: `Manage the topic contexts stored under paths.contexts.

A context describes a content series: topic, audience, themes and key
messages. Each generated post can record the angle it covered so the next
prompt picks a fresh one.

Examples:
  postcraft context create leadership
  postcraft context list
  postcraft context show leadership
  postcraft context cover leadership --angle "Delegating code review"
  postcraft context delete leadership`,
}

var contextCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a context from the template",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextCreate,
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contexts",
	Args:  cobra.NoArgs,
	RunE:  runContextList,
}

var contextShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextShow,
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Long: `Delete a stored context.
Requires confirmation unless --force is used.

Examples:
  postcraft context delete leadership
  postcraft context delete leadership --force`,
	Args: cobra.ExactArgs(1),
	RunE: runContextDelete,
}

var contextCoverCmd = &cobra.Command{
	Use:   "cover <name>",
	Short: "Record an angle as covered",
	Long: `Append "YYYY-MM-DD: <angle>" to the context's covered angles.

Examples:
  postcraft context cover leadership --angle "Hiring for curiosity"`,
	Args: cobra.ExactArgs(1),
	RunE: runContextCover,
}

func init() {
	contextShowCmd.Flags().BoolVar(&contextShowRaw, "yaml", false, "print the raw YAML file")
	contextDeleteCmd.Flags().BoolVarP(&contextDeleteForce, "force", "f", false, "skip confirmation")
	contextCoverCmd.Flags().StringVar(&contextCoverAngle, "angle", "", "summary of the covered angle")
	_ = contextCoverCmd.MarkFlagRequired("angle")

	contextCmd.AddCommand(contextCreateCmd)
	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextShowCmd)
	contextCmd.AddCommand(contextDeleteCmd)
	contextCmd.AddCommand(contextCoverCmd)
}

func contextStore() *contexts.Store {
	return contexts.NewStore(cfg.Paths.Contexts)
}

func runContextCreate(cmd *cobra.Command, args []string) error {
	store := contextStore()
	if _, err := store.Create(args[0]); err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, defaultTheme.completedStyle().Render("✓ Created context template: "+store.Path(args[0])))
	fmt.Fprintln(out, defaultTheme.hintStyle().Render("Edit the file, then run: postcraft generate --context "+args[0]))
	return nil
}

func runContextList(cmd *cobra.Command, args []string) error {
	store := contextStore()
	names, err := store.List()
	if err != nil {
		return fmt.Errorf("list contexts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No contexts found.")
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("Create one with: postcraft context create <name>"))
		return nil
	}

	fmt.Fprintf(out, "Contexts (%d):\n\n", len(names))
	for _, name := range names {
		c, err := store.Load(name)
		if err != nil {
			fmt.Fprintf(out, "  %-20s %s\n", name, defaultTheme.errorStyle().Render("unreadable: "+err.Error()))
			continue
		}
		fmt.Fprintf(out, "  %-20s %s (%d covered)\n", name, models.Truncate(c.Topic, 50), len(c.CoveredAngles))
	}
	return nil
}

func runContextShow(cmd *cobra.Command, args []string) error {
	store := contextStore()
	out := cmd.OutOrStdout()

	if contextShowRaw {
		data, err := os.ReadFile(store.Path(args[0]))
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", contexts.ErrNotFound, args[0])
		}
		if err != nil {
			return fmt.Errorf("read context: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	c, err := store.Load(args[0])
	if err != nil {
		return err
	}
	printContext(out, c)
	return nil
}

func printContext(out io.Writer, c *models.Context) {
	fmt.Fprintln(out, defaultTheme.headingStyle().Render(c.Name))
	fmt.Fprintf(out, "Topic:     %s\n", c.Topic)
	if c.Description != "" {
		fmt.Fprintf(out, "About:     %s\n", c.Description)
	}
	if c.TargetAudience != "" {
		fmt.Fprintf(out, "Audience:  %s\n", c.TargetAudience)
	}
	if c.PostingFrequency != "" {
		fmt.Fprintf(out, "Frequency: %s\n", c.PostingFrequency)
	}

	uncovered := make(map[string]bool)
	for _, t := range c.UncoveredThemes() {
		uncovered[t] = true
	}
	if len(c.Themes) > 0 {
		fmt.Fprintln(out, "\nThemes:")
		for _, t := range c.Themes {
			mark := "✓"
			if uncovered[t] {
				mark = " "
			}
			fmt.Fprintf(out, "  [%s] %s\n", mark, t)
		}
	}
	if len(c.KeyMessages) > 0 {
		fmt.Fprintln(out, "\nKey messages:")
		for _, m := range c.KeyMessages {
			fmt.Fprintf(out, "  - %s\n", m)
		}
	}

	recent := c.RecentAngles(prompt.RecentAngleLimit)
	fmt.Fprintf(out, "\nCovered angles (%d):\n", len(c.CoveredAngles))
	if len(recent) == 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("  none yet"))
	}
	for _, a := range recent {
		fmt.Fprintf(out, "  - %s\n", a)
	}
	if hidden := len(c.CoveredAngles) - len(recent); hidden > 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render(fmt.Sprintf("  ... and %d older", hidden)))
	}
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := contextStore()
	out := cmd.OutOrStdout()

	c, err := store.Load(name)
	if err != nil {
		return err
	}

	// Confirm deletion
	if !contextDeleteForce {
		fmt.Fprintf(out, "About to delete: %s (%s)\n", c.Name, store.Path(name))
		fmt.Fprint(out, "\nContinue? [y/N]: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		response, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := store.Delete(name); err != nil {
		return fmt.Errorf("delete context: %w", err)
	}
	fmt.Fprintf(out, "Deleted: %s\n", name)
	return nil
}

func runContextCover(cmd *cobra.Command, args []string) error {
	c, err := contextStore().Cover(args[0], time.Now(), contextCoverAngle)
	if err != nil {
		return fmt.Errorf("cover angle: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.completedStyle().Render(
		fmt.Sprintf("✓ Recorded %q (%d covered angles)", c.CoveredAngles[len(c.CoveredAngles)-1], len(c.CoveredAngles))))
	return nil
}
