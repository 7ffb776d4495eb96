// Package cli implements infobot-admin, the operator tool for inspecting the
// bot's database.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"weather-news-bot/internal/config"
	"weather-news-bot/internal/model"
	"weather-news-bot/internal/repository"
	"weather-news-bot/internal/server"
)

const (
	recentUsersLimit = 5
	recentLogsLimit  = 10
	timeLayout       = "2006-01-02 15:04:05"
)

type options struct {
	databaseURL string
	format      string
	limit       int
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "infobot-admin",
		Short:         "Inspect the weather/news bot database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "db", "", "Database URL (defaults to DATABASE_URL)")

	cmd.AddCommand(
		newStatsCmd(opts),
		newLogsCmd(opts),
		newTablesCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

func (o *options) openStore() (*repository.Store, error) {
	dsn := strings.TrimSpace(o.databaseURL)
	if dsn == "" {
		dsn = config.DatabaseURL()
	}
	if dsn == "" {
		return nil, fmt.Errorf("database url is required: pass --db or set DATABASE_URL")
	}
	db, err := repository.NewDB(dsn)
	if err != nil {
		return nil, err
	}
	return repository.NewStore(db), nil
}

func newStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show user and log counts with the most recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			stats, err := server.CollectStats(ctx, store)
			if err != nil {
				return fmt.Errorf("collect stats: %w", err)
			}

			var users []model.User
			var logs []model.Log
			err = store.Session(ctx, func(s *repository.Session) error {
				var err error
				if users, err = s.Users.ListRecent(ctx, recentUsersLimit); err != nil {
					return err
				}
				logs, err = s.Logs.ListRecent(ctx, recentLogsLimit)
				return err
			})
			if err != nil {
				return fmt.Errorf("load recent entries: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSON(out, map[string]interface{}{
					"stats": stats,
					"users": users,
					"logs":  logs,
				})
			}

			fmt.Fprintf(out, "Users: %d (subscribed: %d)\n", stats.Users, stats.Subscribed)
			fmt.Fprintf(out, "Logs: %d\n", stats.Logs)
			fmt.Fprintf(out, "\nLast %d users:\n", recentUsersLimit)
			for _, u := range users {
				fmt.Fprintf(out, "  #%d telegram=%d name=%q subscription=%s registered=%s\n",
					u.ID, u.TelegramID, u.Name, u.SubscriptionSettings, u.RegisteredAt.Format(timeLayout))
			}
			fmt.Fprintf(out, "\nLast %d logs:\n", recentLogsLimit)
			writeLogs(out, logs)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	return cmd
}

func newLogsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <telegram-id>",
		Short: "Show the most recent commands of one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid telegram id %q", args[0])
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			return store.Session(ctx, func(s *repository.Session) error {
				user, err := s.Users.FindByTelegramID(ctx, telegramID)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("user with telegram id %d not found", telegramID)
				}
				if err != nil {
					return err
				}
				logs, err := s.Logs.ListByUser(ctx, user.ID, opts.limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (#%d, %s):\n", user.Name, user.ID, user.SubscriptionSettings)
				writeLogs(out, logs)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Maximum number of entries")
	return cmd
}

func newTablesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.TableNames(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tables: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Tables:")
			for _, name := range names {
				fmt.Fprintf(out, "- %s\n", name)
			}
			return nil
		},
	}
}

// newMigrateCmd creates missing tables; opening the store already migrates.
func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Database initialized.")
			return nil
		},
	}
}

func writeLogs(out io.Writer, logs []model.Log) {
	if len(logs) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, l := range logs {
		fmt.Fprintf(out, "  #%d user=%d %s %s\n", l.ID, l.UserID, l.Timestamp.Format(timeLayout), l.Command)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
