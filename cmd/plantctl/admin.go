package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/plantpal/internal/config"
	"github.com/plantpal/internal/db"
	"github.com/spf13/cobra"
)

// adminUserCmd 在数据库中创建后台管理员，已存在时不做修改。
func adminUserCmd(opts *rootOptions) *cobra.Command {
	var username, password, dbPath string
	cmd := &cobra.Command{
		Use:   "admin-user",
		Short: "Create the settings administrator if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
				return errors.New("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.storage != "" {
				cfg.StorageEngine = strings.ToLower(opts.storage)
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}

			gdb, err := db.Open(cfg.DatabaseDriver(), cfg.DatabaseDSN())
			if err != nil {
				return fmt.Errorf("数据库初始化失败: %w", err)
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := db.EnsureUser(gdb, username, password); err != nil {
				return fmt.Errorf("创建用户失败: %w", err)
			}
			if _, err := db.Authenticate(gdb, username, password); err != nil {
				return fmt.Errorf("user %q already exists with a different password", strings.TrimSpace(username))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "administrator %q is ready\n", strings.TrimSpace(username))
			return err
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Administrator username")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from DATABASE_PATH)")
	return cmd
}
