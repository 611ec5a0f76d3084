package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/listd/listd/internal/events"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/output"
	"github.com/listd/listd/internal/projection"
	"github.com/listd/listd/internal/tui/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch <list>",
	Short:   "Live view of a list, updated as others change it",
	GroupID: "core",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if err := s.Lists.Reload(ctx); err != nil {
			output.Error("load lists: %v", err)
			return err
		}
		listID, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		list, _ := s.Lists.Get(listID)

		store, mut := s.Items(listID)
		watcher := s.Watch()
		if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
			watcher.SetInterval(interval)
		}
		go watcher.Run(ctx)

		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			return runPlainWatch(ctx, s.Bus, store, list.Title)
		}

		model := watch.New(ctx, s.Client, store, mut, listID, list.Title)
		unsub := s.Bus.Subscribe(events.EntityItems, func(events.Change) { model.Notify() })
		defer unsub()

		_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
		return err
	},
}

// runPlainWatch prints the list on every change instead of running the TUI,
// for dumb terminals and logging.
func runPlainWatch(ctx context.Context, bus *events.Bus, store *projection.Store[models.Item], title string) error {
	printItems := func() {
		fmt.Printf("-- %s (%s)\n", title, time.Now().Format("15:04:05"))
		for _, it := range store.Snapshot() {
			fmt.Println(output.FormatItem(&it, false))
		}
	}

	if err := store.Reload(ctx); err != nil {
		output.Error("load items: %v", err)
		return err
	}
	printItems()

	listener := events.NewListener(bus, events.EntityItems, store)
	listener.Attach(ctx)
	defer listener.Detach()

	// Reprint on a coarse tick; the listener keeps the store current.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			printItems()
		}
	}
}

func init() {
	watchCmd.Flags().Bool("plain", false, "print on change instead of the interactive view")
	watchCmd.Flags().Duration("interval", 0, "change poll interval (default 2s)")
	rootCmd.AddCommand(watchCmd)
}
