// Package main is the entry point for the mi-amore game server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mi-amore",
	Short: "Mi Amore co-op game server",
	Long:  `Mi Amore hosts two-player rooms over WebSocket: a boy and a girl collect hearts, survive zombies and meet for the proposal.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
}
