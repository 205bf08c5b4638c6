package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"store-rating/internal/core/config"
	"store-rating/internal/core/database"
	"store-rating/internal/core/logger"
	"store-rating/internal/domain"
	"store-rating/internal/repo"
	"store-rating/internal/service"
)

var configPath string

// rootCmd 运维命令：建表、创建管理员（公开注册只会得到 user 角色）
var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Store rating operator tools",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, l *zap.Logger) error {
			if err := repo.Migrate(db); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}
			l.Info("schema migrated")
			return nil
		})
	},
}

var adminIn service.CreateUserInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminIn.Password == "" {
			adminIn.Password = os.Getenv("ADMIN_PASSWORD")
		}
		adminIn.Role = domain.RoleAdmin
		return withDB(func(db *gorm.DB, l *zap.Logger) error {
			if err := repo.Migrate(db); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			svc := service.NewUserService(repo.NewUserRepo(db), repo.NewStatsRepo(db), nil)
			u, err := svc.Create(ctx, adminIn)
			var de *domain.Error
			if errors.As(err, &de) && len(de.Details) > 0 {
				return fmt.Errorf("%s: %v", de.Msg, de.Details)
			}
			if err != nil {
				return err
			}
			l.Info("administrator created", zap.String("id", u.ID), zap.String("email", u.Email))
			return nil
		})
	},
}

func withDB(fn func(db *gorm.DB, l *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, cleanup := logger.New(logger.FromConfig(cfg.Log))
	defer cleanup()

	db, err := database.NewGorm(database.OptsFromConfig(cfg.DB), l)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(db, l)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "config file path")

	createAdminCmd.Flags().StringVar(&adminIn.Name, "name", "", "full name (20-60 characters)")
	createAdminCmd.Flags().StringVar(&adminIn.Email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminIn.Password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	createAdminCmd.Flags().StringVar(&adminIn.Address, "address", "", "postal address")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(migrateCmd, createAdminCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
