package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/listd/listd/internal/docsync"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/optimistic"
	"github.com/listd/listd/internal/output"
	"github.com/listd/listd/internal/projection"
	"github.com/listd/listd/internal/reorder"
	"github.com/listd/listd/internal/session"
	"github.com/spf13/cobra"
)

// openItems loads the lists store, resolves the --list flag (or default
// list), and returns the item store/mutator pair for it.
func openItems(cmd *cobra.Command, s *session.Session) (string, *projection.Store[models.Item], *optimistic.Mutator[models.Item], error) {
	ctx := cmd.Context()
	if err := s.Lists.Reload(ctx); err != nil {
		return "", nil, nil, fmt.Errorf("load lists: %w", err)
	}
	ref, _ := cmd.Flags().GetString("list")
	listID, err := resolveList(s, ref)
	if err != nil {
		return "", nil, nil, err
	}
	store, mut := s.Items(listID)
	if err := store.Reload(ctx); err != nil {
		return "", nil, nil, fmt.Errorf("load items: %w", err)
	}
	return listID, store, mut, nil
}

// cachedItems resolves a list reference against the cached list snapshot and
// returns its cached items. Used when the server is unreachable.
func cachedItems(s *session.Session, ref string) ([]models.Item, error) {
	lists, err := s.Cache.Lists()
	if err != nil {
		return nil, err
	}
	listID, err := resolveListIn(lists, ref, s.Config.DefaultList)
	if err != nil {
		return nil, err
	}
	return s.Cache.Items(listID)
}

var itemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"it"},
	Short:   "Show items in a list",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		_, store, _, err := openItems(cmd, s)
		if err != nil {
			// Fall back to the cached snapshot when offline.
			ref, _ := cmd.Flags().GetString("list")
			cached, cerr := cachedItems(s, ref)
			if cerr != nil || len(cached) == 0 {
				output.Error("%v", err)
				return err
			}
			output.Warning("server unreachable, showing cached state")
			for i := range cached {
				fmt.Println(output.FormatItem(&cached[i], false))
			}
			return nil
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(store.Snapshot())
		}
		items := store.Snapshot()
		if len(items) == 0 {
			fmt.Println("Nothing here")
			return nil
		}
		withNotes, _ := cmd.Flags().GetBool("notes")
		for i := range items {
			pending, _ := store.Provenance(items[i].ID)
			fmt.Println(output.FormatItem(&items[i], pending == models.Pending))
			if withNotes && items[i].Note != "" {
				fmt.Println(output.RenderNote(items[i].Note))
			}
		}
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		listID, _, mut, err := openItems(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		title := args[0]
		id := uuid.NewString()
		err = mut.Create(ctx, id, models.Item{ID: id, ListID: listID, Title: title},
			func(ctx context.Context) (*models.Item, error) {
				return s.Client.CreateItem(ctx, listID, id, title)
			})
		if err != nil {
			output.Error("add item: %v", err)
			return err
		}
		output.Success("added %s", title)
		return nil
	},
}

var itemsDoneCmd = &cobra.Command{
	Use:   "done <item>",
	Short: "Toggle an item's completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		listID, store, mut, err := openItems(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		id, err := resolveItem(store, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		cur, _ := store.Get(id)
		next := !cur.Done
		err = optimistic.Update(ctx, mut, id, "done",
			func(it models.Item) bool { return it.Done },
			func(it models.Item, v bool) models.Item { it.Done = v; return it },
			next,
			func(ctx context.Context) (*models.Item, error) {
				return s.Client.UpdateItem(ctx, listID, id, docsync.ItemPatch{Done: &next})
			})
		if err != nil {
			output.Error("toggle item: %v", err)
			return err
		}
		if next {
			output.Success("done: %s", cur.Title)
		} else {
			output.Success("reopened: %s", cur.Title)
		}
		return nil
	},
}

var itemsNoteCmd = &cobra.Command{
	Use:   "note <item> <markdown>",
	Short: "Set an item's note (markdown)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		listID, store, mut, err := openItems(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		id, err := resolveItem(store, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		note := args[1]
		err = optimistic.Update(ctx, mut, id, "note",
			func(it models.Item) string { return it.Note },
			func(it models.Item, v string) models.Item { it.Note = v; return it },
			note,
			func(ctx context.Context) (*models.Item, error) {
				return s.Client.UpdateItem(ctx, listID, id, docsync.ItemPatch{Note: &note})
			})
		if err != nil {
			output.Error("set note: %v", err)
			return err
		}
		output.Success("note updated")
		return nil
	},
}

var itemsRmCmd = &cobra.Command{
	Use:   "rm <item>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		listID, store, mut, err := openItems(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		id, err := resolveItem(store, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if err := mut.Delete(ctx, id, func(ctx context.Context) error {
			return s.Client.DeleteItem(ctx, listID, id)
		}); err != nil {
			output.Error("delete item: %v", err)
			return err
		}
		output.Success("deleted %s", output.ShortID(id))
		return nil
	},
}

var itemsMoveCmd = &cobra.Command{
	Use:   "move <item> (--before <item> | --after <item>)",
	Short: "Reorder an item relative to another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		listID, store, mut, err := openItems(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		source, err := resolveItem(store, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		target, place, err := moveTarget(cmd.Flags(), func(ref string) (string, error) {
			return resolveItem(store, ref)
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		ids := reorder.Move(store.IDs(), source, target, place)
		err = mut.Reorder(ctx, ids, func(ctx context.Context) error {
			_, err := s.Client.ReorderItems(ctx, listID, ids)
			return err
		})
		if err != nil {
			output.Error("reorder items: %v", err)
			return err
		}
		output.Success("moved %s", output.ShortID(source))
		return nil
	},
}

func init() {
	itemsCmd.PersistentFlags().String("list", "", "list id, prefix, or title (defaults to the configured default list)")
	itemsCmd.Flags().Bool("json", false, "JSON output")
	itemsCmd.Flags().Bool("notes", false, "render item notes")
	itemsMoveCmd.Flags().String("before", "", "place before this item")
	itemsMoveCmd.Flags().String("after", "", "place after this item")

	itemsCmd.AddCommand(itemsAddCmd, itemsDoneCmd, itemsNoteCmd, itemsRmCmd, itemsMoveCmd)
	rootCmd.AddCommand(itemsCmd)
}
