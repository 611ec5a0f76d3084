package cmd

import (
	"context"
	"fmt"

	"github.com/listd/listd/internal/invite"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/output"
	"github.com/spf13/cobra"
)

var inviteCmd = &cobra.Command{
	Use:     "invite <list> <emails>",
	Short:   "Invite people to a list by email",
	Long:    "Invite one or more email addresses (comma or space separated). Each address is submitted independently; failed addresses are reported for retry.",
	GroupID: "sharing",
	Args:    cobra.ExactArgs(2),
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

		roleStr, _ := cmd.Flags().GetString("role")
		if !models.InvitableRole(roleStr) {
			output.Error("invalid role %q (admin, editor, viewer)", roleStr)
			return fmt.Errorf("invalid role %q", roleStr)
		}
		role := models.Role(roleStr)

		emails := invite.SplitEmails(args[1])
		if len(emails) == 0 {
			output.Error("no email addresses given")
			return fmt.Errorf("no email addresses given")
		}

		res := invite.Send(ctx,
			func(ctx context.Context, email string, role models.Role) (*models.Invitation, error) {
				return s.Client.CreateInvitation(ctx, listID, email, role)
			},
			emails, role)

		fmt.Println(output.FormatInviteResult(&res))
		if res.Outcome == invite.AllFailed {
			return fmt.Errorf("all invitations failed")
		}
		return nil
	},
}

var inviteCancelCmd = &cobra.Command{
	Use:   "cancel <list> <invitation>",
	Short: "Cancel a pending invitation",
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

		invs, mut := s.Invitations(listID)
		if err := invs.Reload(ctx); err != nil {
			output.Error("load invitations: %v", err)
			return err
		}

		// Accept id prefix or exact email.
		ref := args[1]
		var invID string
		for _, inv := range invs.Snapshot() {
			if inv.ID == ref || inv.Email == ref || (len(ref) >= 4 && len(inv.ID) >= len(ref) && inv.ID[:len(ref)] == ref) {
				invID = inv.ID
				break
			}
		}
		if invID == "" {
			output.Error("no invitation matching %q", ref)
			return fmt.Errorf("no invitation matching %q", ref)
		}

		if err := mut.Delete(ctx, invID, func(ctx context.Context) error {
			return s.Client.DeleteInvitation(ctx, listID, invID)
		}); err != nil {
			output.Error("cancel invitation: %v", err)
			return err
		}
		output.Success("cancelled %s", output.ShortID(invID))
		return nil
	},
}

func init() {
	inviteCmd.Flags().String("role", "editor", "role to grant (admin, editor, viewer)")
	inviteCmd.AddCommand(inviteCancelCmd)
	rootCmd.AddCommand(inviteCmd)
}
