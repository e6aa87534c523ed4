package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/core/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/platform/config"
	"github.com/SscSPs/investment_bot/internal/platform/storage"
	"github.com/SscSPs/investment_bot/internal/utils"
	"github.com/SscSPs/investment_bot/migrations"
	"github.com/SscSPs/investment_bot/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:          "roictl",
		Short:        "Operator tools for the investment bot",
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSweepCmd(),
		newTokenCmd(),
		newCodeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	return middleware.WithLogger(cmd.Context(), slog.Default())
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != config.StoragePostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StoragePostgres)
			}
			if err := database.Migrate(cfg.DatabaseURL, migrations.FS); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Pay every account that is due now, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			repos, closeStore, err := storage.Open(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := services.NewServiceContainer(cfg, repos)
			result := svc.ROI.ProcessSweep(ctx, svc.ROI.Now())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("sweep finished with %d errors", len(result.Errors))
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		adminID string
		expiry  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if expiry <= 0 {
				expiry = cfg.JWTExpiryDuration
			}
			token, err := utils.GenerateAdminToken(adminID, cfg.JWTSecret, expiry, cfg.JWTIssuer, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&adminID, "admin", "", "admin id recorded as the actor of API changes")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (defaults to JWT_EXPIRY_DURATION)")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}

func newCodeCmd() *cobra.Command {
	var (
		name       string
		balance    string
		code       string
		assignedTo string
		validFor   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Create an access code",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid --balance %q: %w", balance, err)
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			repos, closeStore, err := storage.Open(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := services.NewServiceContainer(cfg, repos)
			req := dto.CreateAccessCodeRequest{
				Code:              code,
				Name:              name,
				InitialBalance:    amount,
				PreassignedUserID: assignedTo,
			}
			if validFor > 0 {
				expires := svc.ROI.Now().Add(validFor)
				req.ExpiresAt = &expires
			}
			created, err := svc.AccessCode.CreateAccessCode(ctx, req, domain.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", created.Code, created.Name, created.InitialBalance.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "plan name shown to the user")
	cmd.Flags().StringVar(&balance, "balance", "", "initial deposit credited on redemption")
	cmd.Flags().StringVar(&code, "code", "", "code to create (generated when empty)")
	cmd.Flags().StringVar(&assignedTo, "user", "", "restrict redemption to this user id")
	cmd.Flags().DurationVar(&validFor, "valid-for", 0, "expire the code after this long")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("balance")
	return cmd
}
