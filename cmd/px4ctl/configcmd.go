package main

import (
	"github.com/spf13/cobra"

	"github.com/AryaMajumder/px4-jmavsim/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold the px4ctl configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		path      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter px4ctl.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(path, overwrite); err != nil {
				return err
			}
			term.Success("wrote " + path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", config.DefaultPath, "Where to write the config file")
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := config.Render(cfg)
			if err != nil {
				return err
			}
			term.Println(rendered)
			return nil
		},
	}
}
