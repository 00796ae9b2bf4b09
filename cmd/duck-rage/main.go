// duck-rage provisions database credentials from age-encrypted secrets files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "duck-rage",
	Short: "Provision database credentials from age-encrypted secrets",
	Long: `duck-rage decrypts a password from an age-encrypted JSON secrets file and
registers it as a named credential (duck_rage_<database>) on the host
database connection. The decrypted secret never touches disk or logs.`,
	RunE:          runServe, // Default to serve mode.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, provisionCmd, keygenCmd)
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
