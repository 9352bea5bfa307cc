// @title                       FP&A Intelligence API
// @version                     1.0.0
// @description                 Financial planning and analysis backend: analyses, market research questions, file uploads and user administration.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "fpa-api",
		Short:         "FP&A Intelligence API server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default command)",
		RunE:  runServe,
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an administrator in the configured store",
		Long: `Create an active admin user. Self-registration never grants the admin
role, so use this to bootstrap the first administrator.

Examples:
  fpa-api create-admin --username root --email root@example.com --password 's3cretpass'`,
		RunE: runCreateAdmin,
	}

	cmd.Flags().String("username", "", "admin username (3-50 characters)")
	cmd.Flags().String("email", "", "admin email")
	cmd.Flags().String("full-name", "", "display name")
	cmd.Flags().String("password", "", "password (8-100 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
