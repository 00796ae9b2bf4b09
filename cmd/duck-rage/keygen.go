package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duck-rage/duck-rage/internal/agecrypt"
)

var keygenOutput string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an age identity file for decrypting secrets",
	Long: `Generate a fresh X25519 identity file and print the public recipient.
Encrypt your secrets file against the printed recipient, e.g.:

  echo '{"db_password": "hunter2"}' | age -r age1... -o secrets.age`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringVarP(&keygenOutput, "output", "o", "", "path to write the identity file (required)")
	_ = keygenCmd.MarkFlagRequired("output")
}

func runKeygen(_ *cobra.Command, _ []string) error {
	recipient, err := agecrypt.GenerateIdentity(keygenOutput)
	if err != nil {
		return err
	}
	fmt.Printf("identity written to %s\n", keygenOutput)
	fmt.Printf("public key: %s\n", recipient)
	return nil
}
