package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chainbourne/chainrelay/internal/config"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "chainrelayd",
	Short: "HTTP-to-bus JSON-RPC gateway for a chain node",
	Long: `chainrelayd terminates JSON-RPC 2.0 over HTTP, publishes each
request onto an internal message bus keyed by a correlation id, and
replies once the node's response arrives or the publish timeout elapses.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
		return nil
	},
	RunE: runServe,
}

func init() {
	config.BindFlags(rootCmd.Flags(), v)
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway's HTTP listener (default command)",
	RunE:  runServe,
}
