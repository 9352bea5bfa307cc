package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
	"github.com/fpa-intel/fpa-api/internal/core/service"
	"github.com/fpa-intel/fpa-api/internal/pkg/config"
	"github.com/fpa-intel/fpa-api/pkg/logger"
)

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.Disabled {
		return fmt.Errorf("create-admin needs a database: the in-memory store does not outlive this command")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "fpa-api", Env: cfg.Env})
	log := logger.Get()

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	fullName, _ := cmd.Flags().GetString("full-name")
	password, _ := cmd.Flags().GetString("password")

	users := service.NewUserService(store, cfg.MaxPageSize, log)
	admin, err := users.CreateAdmin(ctx, ports.RegisterInput{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Username, admin.ID)
	return nil
}
