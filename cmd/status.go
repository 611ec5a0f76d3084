package cmd

import (
	"fmt"

	"github.com/listd/listd/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show server, account, and plan status",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if _, err := s.Client.HealthCheck(ctx); err != nil {
			output.Error("server unreachable: %v", err)
			return err
		}
		output.Success("server ok: %s", s.Config.ServerURL)

		account, err := s.Client.GetAccount(ctx)
		if err != nil {
			output.Error("load account: %v", err)
			return err
		}
		fmt.Printf("account: %s\n", account.Email)
		if account.ListQuota > 0 {
			fmt.Printf("plan: %s (%d/%d lists)\n", account.Plan, account.ListCount, account.ListQuota)
			if account.OverQuota() {
				output.Warning("list quota reached, upgrade to create more lists")
			}
		} else {
			fmt.Printf("plan: %s\n", account.Plan)
		}

		seq, err := s.Cache.LastSeq()
		if err == nil && seq > 0 {
			output.Info("change cursor: %d", seq)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show the listd version",
	GroupID: "system",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, versionCmd)
}
