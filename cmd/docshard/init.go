package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docshard/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHome()
		if err != nil {
			return err
		}
		if h.ConfigExists() {
			return fmt.Errorf("config already exists at %s", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Initialized docshard home at %s\n", h.Path())
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
