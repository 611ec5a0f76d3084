package cmd

import (
	"github.com/listd/listd/internal/config"
	"github.com/listd/listd/internal/output"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:     "login <server-url>",
	Short:   "Configure the server and API key",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		cfg.ServerURL = args[0]
		if key, _ := cmd.Flags().GetString("api-key"); key != "" {
			cfg.APIKey = key
		}
		if list, _ := cmd.Flags().GetString("default-list"); list != "" {
			cfg.DefaultList = list
		}

		if err := config.Save(dir, cfg); err != nil {
			output.Error("save config: %v", err)
			return err
		}
		if err := config.EnsureDeviceID(dir, cfg); err != nil {
			output.Error("assign device id: %v", err)
			return err
		}
		output.Success("configured %s", cfg.ServerURL)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("api-key", "", "API key for the server")
	loginCmd.Flags().String("default-list", "", "default list id for item commands")
	rootCmd.AddCommand(loginCmd)
}
