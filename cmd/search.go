package cmd

import (
	"fmt"
	"strings"

	"github.com/listd/listd/internal/output"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search items across lists",
	GroupID: "core",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		listRef, _ := cmd.Flags().GetString("list")
		listID := ""
		if listRef != "" {
			if err := s.Lists.Reload(ctx); err != nil {
				output.Error("load lists: %v", err)
				return err
			}
			listID, err = resolveList(s, listRef)
			if err != nil {
				output.Error("%v", err)
				return err
			}
		}

		q := strings.Join(args, " ")
		results, err := s.Client.Search(ctx, q, listID)
		if err != nil {
			output.Error("search: %v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(results)
		}
		if len(results) == 0 {
			fmt.Println("No matches")
			return nil
		}
		for i := range results {
			r := &results[i]
			fmt.Printf("%s  %s\n", output.FormatItem(&r.Item, false), r.ListTitle)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("list", "", "restrict to one list")
	searchCmd.Flags().Bool("json", false, "JSON output")
	rootCmd.AddCommand(searchCmd)
}
