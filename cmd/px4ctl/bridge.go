package main

import (
	"github.com/spf13/cobra"

	"github.com/AryaMajumder/px4-jmavsim/internal/bridge"
)

func newBridgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bridge",
		Short: "Relay telemetry datagrams to the MQTT broker until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := bridge.New(cfg.Bridge)
			if err != nil {
				return err
			}
			term.Subtle("bridge running on " + cfg.Bridge.ListenAddr + ", ctrl-c to stop")
			return b.Run(cmd.Context())
		},
	}
}
