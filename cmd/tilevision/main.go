package main

import (
	"github.com/tilevision/tilevision/internal/log"
)

var Version = "dev"

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd, serveCmd, scrapeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
