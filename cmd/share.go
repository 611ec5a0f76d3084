package cmd

import (
	"context"
	"fmt"

	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/optimistic"
	"github.com/listd/listd/internal/output"
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:     "share <list>",
	Short:   "Show who has access to a list",
	GroupID: "sharing",
	Args:    cobra.ExactArgs(1),
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
		listID, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		perms, _ := s.Permissions(listID)
		invs, _ := s.Invitations(listID)
		if err := perms.Reload(ctx); err != nil {
			output.Error("load permissions: %v", err)
			return err
		}
		if err := invs.Reload(ctx); err != nil {
			output.Error("load invitations: %v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]any{
				"permissions": perms.Snapshot(),
				"invitations": invs.Snapshot(),
			})
		}

		members := perms.Snapshot()
		for i := range members {
			fmt.Println(output.FormatPermission(&members[i]))
		}
		pending := invs.Snapshot()
		if len(pending) > 0 {
			fmt.Println("\nPending invitations:")
			for i := range pending {
				fmt.Println(output.FormatInvitation(&pending[i]))
			}
		}
		return nil
	},
}

var shareRoleCmd = &cobra.Command{
	Use:   "role <list> <user-id> <role>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(3),
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
		listID, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		userID := args[1]
		if !models.ValidRole(args[2]) {
			output.Error("invalid role %q (owner, admin, editor, viewer)", args[2])
			return fmt.Errorf("invalid role %q", args[2])
		}
		role := models.Role(args[2])

		perms, mut := s.Permissions(listID)
		if err := perms.Reload(ctx); err != nil {
			output.Error("load permissions: %v", err)
			return err
		}

		err = optimistic.Update(ctx, mut, userID, "role",
			func(p models.Permission) models.Role { return p.Role },
			func(p models.Permission, v models.Role) models.Permission { p.Role = v; return p },
			role,
			func(ctx context.Context) (*models.Permission, error) {
				return s.Client.UpdatePermission(ctx, listID, userID, role)
			})
		if err != nil {
			output.Error("change role: %v", err)
			return err
		}
		output.Success("%s is now %s", userID, role)
		return nil
	},
}

var shareRemoveCmd = &cobra.Command{
	Use:   "remove <list> <user-id>",
	Short: "Revoke a member's access",
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
		listID, err := resolveList(s, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		userID := args[1]

		perms, mut := s.Permissions(listID)
		if err := perms.Reload(ctx); err != nil {
			output.Error("load permissions: %v", err)
			return err
		}

		if err := mut.Delete(ctx, userID, func(ctx context.Context) error {
			return s.Client.RemovePermission(ctx, listID, userID)
		}); err != nil {
			output.Error("remove member: %v", err)
			return err
		}
		output.Success("removed %s", userID)
		return nil
	},
}

func init() {
	shareCmd.Flags().Bool("json", false, "JSON output")
	shareCmd.AddCommand(shareRoleCmd, shareRemoveCmd)
	rootCmd.AddCommand(shareCmd)
}
