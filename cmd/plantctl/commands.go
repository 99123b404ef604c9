package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/plantpal/internal/app"
	"github.com/plantpal/internal/config"
	"github.com/plantpal/internal/logging"
	"github.com/plantpal/internal/plant"
	"github.com/plantpal/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	storage   string
	dataFile  string
	plantName string
	asJSON    bool
	verbose   bool
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "plantctl",
		Short:         "Tend your plant companion from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "Storage engine: sqlite, mysql, json, redis, memory (default from STORAGE_ENGINE)")
	rootCmd.PersistentFlags().StringVar(&opts.dataFile, "data-file", "", "JSON data file for the json engine (default from DATA_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.plantName, "plant-name", "", "Plant name used when creating a new record")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Operation timeout")

	rootCmd.AddCommand(
		statusCmd(opts),
		moodCmd(opts),
		growCmd(opts),
		historyCmd(opts),
		insightsCmd(opts),
		chatCmd(opts),
		motivationCmd(opts),
		adminUserCmd(opts),
	)
	return rootCmd
}

// withApp 加载配置、应用命令行覆盖并构建 App，执行完成后释放连接。
func withApp(cmd *cobra.Command, opts *rootOptions, run func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.storage != "" {
		cfg.StorageEngine = strings.ToLower(opts.storage)
	}
	if opts.dataFile != "" {
		cfg.DataFile = opts.dataFile
	}
	if opts.plantName != "" {
		cfg.PlantName = opts.plantName
	}

	logger := zap.NewNop()
	if opts.verbose {
		logger = logging.Must(logging.ModeDevelopment)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(ctx, a)
}

func printResult(w io.Writer, opts *rootOptions, value interface{}, human string) error {
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	_, err := fmt.Fprintln(w, human)
	return err
}

func describePlant(record plant.Record) string {
	return fmt.Sprintf("🌱 %s: growth %d/100 (%s), streak %d days, %d grow actions, feeling %s, last tended %s",
		record.PlantName, record.Growth, plant.GrowthStage(record.Growth), record.Streak,
		record.ChatCount, record.CurrentMood, record.LastInteraction)
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the plant's current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				record := a.Plants.Snapshot()
				return printResult(cmd.OutOrStdout(), opts, record, describePlant(record))
			})
		},
	}
}

func moodCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "mood <sad|neutral|happy>",
		Short:     "Record how you feel today",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"sad", "neutral", "happy"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mood, err := plant.ParseMood(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q (want sad, neutral or happy)", plant.ErrInvalidMood, args[0])
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				record, err := a.Plants.SetMood(ctx, mood)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), opts, record, describePlant(record))
			})
		},
	}
}

func growCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grow",
		Short: "Water the plant once for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result := a.Plants.Grow(ctx)
				human := result.Message
				if result.StreakBonus != "" {
					human += " " + result.StreakBonus
				}
				if !result.Applied {
					human += " (already tended today)"
				}
				return printResult(cmd.OutOrStdout(), opts, result, human)
			})
		},
	}
}

func historyCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent mood logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				logs := a.Plants.MoodHistory(days)
				var b strings.Builder
				if len(logs) == 0 {
					fmt.Fprintf(&b, "No mood logs in the last %d days.", days)
				}
				for i, entry := range logs {
					if i > 0 {
						b.WriteString("\n")
					}
					fmt.Fprintf(&b, "%s  %-7s %d", entry.Date, entry.Mood, entry.MoodScore)
				}
				return printResult(cmd.OutOrStdout(), opts, logs, b.String())
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", plant.DefaultHistoryDays, "Number of days to include")
	return cmd
}

func insightsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Summarise the last week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				insights := a.Plants.Insights()
				human := fmt.Sprintf("Happy days this week: %d\nAverage mood: %.1f (%s)\nTotal interactions: %d\nCurrent streak: %d\nGrowth: %d/100",
					insights.WeeklyHappyDays, insights.AverageWeeklyMood, plant.MoodLabel(insights.AverageWeeklyMood),
					insights.TotalInteractions, insights.CurrentStreak, insights.GrowthLevel)
				return printResult(cmd.OutOrStdout(), opts, insights, human)
			})
		},
	}
}

func chatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Say something to your plant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("message is required")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				record := a.Plants.Snapshot()
				reply := a.Companion.Reply(ctx, service.ReplyInput{
					UserText:  message,
					Mood:      record.CurrentMood,
					Growth:    record.Growth,
					Streak:    record.Streak,
					PlantName: record.PlantName,
				})
				return printResult(cmd.OutOrStdout(), opts, reply, fmt.Sprintf("%s: %s", record.PlantName, reply.Reply))
			})
		},
	}
}

func motivationCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "motivation",
		Short: "Show today's joke, thought and tip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				mood := a.Plants.Snapshot().CurrentMood
				get := a.Motivation.Daily
				if refresh {
					get = a.Motivation.Refresh
				}
				m, err := get(ctx, mood)
				if err != nil {
					return err
				}
				human := fmt.Sprintf("😄 %s\n💡 %s\n🌿 %s", m.Joke, m.Thought, m.Tip)
				return printResult(cmd.OutOrStdout(), opts, m, human)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Generate new content instead of today's cached pick")
	return cmd
}
