package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/duck-rage/duck-rage/internal/exec"
	"github.com/duck-rage/duck-rage/internal/provision"
	"github.com/duck-rage/duck-rage/internal/registry"
	"github.com/duck-rage/duck-rage/pkg/config"
	"github.com/duck-rage/duck-rage/pkg/logger"
)

var provisionTimeout int

var provisionCmd = &cobra.Command{
	Use:   "provision <db_type> <host> <port> <database> <user> <secrets_file> <secret_key> <identity_file>",
	Short: "Provision one credential and exit",
	Long: `Run a single duck_rage call against the configured host connection
(HOST_DRIVER / HOST_DSN) and print the confirmation row.

Example:
  duck-rage provision postgres db.example.com 5432 orders svc secrets.age db_password identity.txt`,
	Args: cobra.ExactArgs(8),
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().IntVar(&provisionTimeout, "timeout", 30, "timeout in seconds")
}

func runProvision(_ *cobra.Command, args []string) error {
	cfg := config.Load()
	// one-shot mode keeps stdout for the confirmation row
	logger.Init(cfg.ServiceName, cfg.Env, "warn")
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(provisionTimeout)*time.Second)
	defer cancel()

	host, err := openHost(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = host.close() }()
	exec.SetShared(host.executor)

	reg := registry.New()
	fn := provision.New(host.executor, logger.L(), nil)
	if err := reg.Register(fn); err != nil {
		return err
	}

	rows, err := registry.Drain(ctx, fn, args)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Println(strings.Join(row, "\t"))
	}
	return nil
}
