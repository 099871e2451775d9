package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atinyakov/GophTasks/internal/client/form"
	"github.com/atinyakov/GophTasks/internal/client/tui"
	"github.com/atinyakov/GophTasks/internal/models"
)

func (a *app) listCmd() *cobra.Command {
	var status, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, ok := models.ParseStatus(status)
			if !ok {
				return fmt.Errorf("unknown status %q", status)
			}
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			list, err := c.Tasks.Load(cmd.Context(), models.TaskFilter{Status: st, Search: search})
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			printTasks(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only tasks with this status (open, in-progress, done)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "only tasks whose title or description contains this text")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			task, err := c.Tasks.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s\n", task.ID, task.Title)
			fmt.Fprintf(out, "Status: %s\n", tui.StatusLabel(task.Status))
			fmt.Fprintf(out, "\n%s\n", task.Description)
			return nil
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			f := form.NewTaskForm()
			if err := a.fill(f.Title, title, "Title: "); err != nil {
				return err
			}
			if err := a.fill(f.Description, description, "Description: "); err != nil {
				return err
			}
			if err := a.submit(&f.Form); err != nil {
				return err
			}

			task, err := c.Tasks.Create(cmd.Context(), f.Title.Value(), f.Description.Value())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title (prompted when empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description (prompted when empty)")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <open|in-progress|done>",
		Short: "Change the status of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, ok := models.ParseStatus(args[1])
			if !ok || st == "" {
				return fmt.Errorf("unknown status %q", args[1])
			}
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			// The local copy lets an unchanged status skip the request.
			if _, err := c.Tasks.Load(cmd.Context(), models.TaskFilter{}); err != nil {
				return err
			}
			task, err := c.Tasks.UpdateStatus(cmd.Context(), id, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d is %s\n", task.ID, tui.StatusLabel(task.Status))
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			if err := c.Tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and filter tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			p := c.NewPipeline()
			defer p.Close()
			return tui.Run(cmd.Context(), c.Tasks, p)
		},
	}
}

func printTasks(out io.Writer, list []models.Task) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tDESCRIPTION")
	for _, t := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, t.Description)
	}
	_ = w.Flush()
}
