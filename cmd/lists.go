package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/listd/listd/internal/docsync"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/optimistic"
	"github.com/listd/listd/internal/output"
	"github.com/listd/listd/internal/reorder"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var listsCmd = &cobra.Command{
	Use:     "lists",
	Aliases: []string{"ls"},
	Short:   "Show all lists",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if err := s.Lists.Reload(ctx); err != nil {
			// Fall back to the cached snapshot when offline.
			cached, cerr := s.Cache.Lists()
			if cerr != nil || len(cached) == 0 {
				output.Error("load lists: %v", err)
				return err
			}
			output.Warning("server unreachable, showing cached state")
			for i := range cached {
				fmt.Println(output.FormatList(&cached[i], false))
			}
			return nil
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(s.Lists.Snapshot())
		}
		lists := s.Lists.Snapshot()
		if len(lists) == 0 {
			fmt.Println("No lists yet. Create one with `listd lists add <title>`")
			return nil
		}
		for i := range lists {
			pending, _ := s.Lists.Provenance(lists[i].ID)
			fmt.Println(output.FormatList(&lists[i], pending == models.Pending))
		}
		return nil
	},
}

var listsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if err := s.Lists.Reload(ctx); err != nil {
			output.Error("load lists: %v", err)
			return err
		}

		// Plan gate: creating past the quota needs an upgrade, checked
		// client-side so the failure is friendly rather than an HTTP 403.
		account, err := s.Client.GetAccount(ctx)
		if err == nil && account.OverQuota() {
			output.Error("list quota reached on the %s plan (%d lists): upgrade to create more",
				account.Plan, account.ListQuota)
			return fmt.Errorf("list quota reached")
		}

		title := args[0]
		id := uuid.NewString()
		err = s.ListsMut.Create(ctx, id, models.List{ID: id, Title: title, Role: models.RoleOwner},
			func(ctx context.Context) (*models.List, error) {
				return s.Client.CreateList(ctx, id, title)
			})
		if err != nil {
			output.Error("create list: %v", err)
			return err
		}
		output.Success("created %s (%s)", title, output.ShortID(id))
		return nil
	},
}

var listsRenameCmd = &cobra.Command{
	Use:   "rename <list> <title>",
	Short: "Rename a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if err := s.Lists.Reload(ctx); err != nil {
			output.Error("load lists: %v", err)
			return err
		}
		id, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		title := args[1]
		err = optimistic.Update(ctx, s.ListsMut, id, "title",
			func(l models.List) string { return l.Title },
			func(l models.List, v string) models.List { l.Title = v; return l },
			title,
			func(ctx context.Context) (*models.List, error) {
				return s.Client.UpdateList(ctx, id, docsync.ListPatch{Title: &title})
			})
		if err != nil {
			output.Error("rename list: %v", err)
			return err
		}
		output.Success("renamed to %s", title)
		return nil
	},
}

var listsRmCmd = &cobra.Command{
	Use:   "rm <list>",
	Short: "Delete a list and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if err := s.Lists.Reload(ctx); err != nil {
			output.Error("load lists: %v", err)
			return err
		}
		id, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if err := s.ListsMut.Delete(ctx, id, func(ctx context.Context) error {
			return s.Client.DeleteList(ctx, id)
		}); err != nil {
			output.Error("delete list: %v", err)
			return err
		}
		output.Success("deleted %s", output.ShortID(id))
		return nil
	},
}

var listsMoveCmd = &cobra.Command{
	Use:   "move <list> (--before <list> | --after <list>)",
	Short: "Reorder a list relative to another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if err := s.Lists.Reload(ctx); err != nil {
			output.Error("load lists: %v", err)
			return err
		}
		source, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		target, place, err := moveTarget(cmd.Flags(), func(ref string) (string, error) {
			return resolveList(s, ref)
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		ids := reorder.Move(s.Lists.IDs(), source, target, place)
		err = s.ListsMut.Reorder(ctx, ids, func(ctx context.Context) error {
			_, err := s.Client.ReorderLists(ctx, ids)
			return err
		})
		if err != nil {
			output.Error("reorder lists: %v", err)
			return err
		}
		output.Success("moved %s", output.ShortID(source))
		return nil
	},
}

// moveTarget reads the --before/--after pair shared by the move commands.
func moveTarget(flags *pflag.FlagSet, resolve func(string) (string, error)) (string, reorder.Placement, error) {
	before, _ := flags.GetString("before")
	after, _ := flags.GetString("after")
	switch {
	case before != "" && after != "":
		return "", 0, fmt.Errorf("use either --before or --after, not both")
	case before != "":
		id, err := resolve(before)
		return id, reorder.Before, err
	case after != "":
		id, err := resolve(after)
		return id, reorder.After, err
	default:
		return "", 0, fmt.Errorf("one of --before or --after is required")
	}
}

func init() {
	listsCmd.Flags().Bool("json", false, "JSON output")
	listsMoveCmd.Flags().String("before", "", "place before this list")
	listsMoveCmd.Flags().String("after", "", "place after this list")

	listsCmd.AddCommand(listsAddCmd, listsRenameCmd, listsRmCmd, listsMoveCmd)
	rootCmd.AddCommand(listsCmd)
}
