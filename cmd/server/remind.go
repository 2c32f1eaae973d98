package main

import (
	"encoding/json"
	"fmt"

	"taskboard/internal/notify"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/tz"

	"github.com/spf13/cobra"
)

func remindCmd() *cobra.Command {
	var (
		portfolio   uint
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Post tomorrow's open tasks to each portfolio channel",
		Long: `Collects the open tasks whose deadline falls on the next calendar day
in the project timezone and posts one message per portfolio channel.

Examples:
  taskboard remind
  taskboard remind --portfolio 3 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			zone, err := tz.New(cfg.Project.Timezone)
			if err != nil {
				return err
			}
			reminders := service.NewReminderService(
				repository.NewTaskRepository(db),
				repository.NewTaskAssignmentRepository(db),
				zone,
			)

			var filter *uint
			if cmd.Flags().Changed("portfolio") {
				filter = &portfolio
			}

			w := reminders.Window()
			log.Info("collecting reminders", "from", w.Start, "to", w.End, "portfolio", filter)
			entries, err := reminders.Tomorrow(cmd.Context(), filter)
			if err != nil {
				return err
			}

			var sender notify.Sender = notify.NewDiscordSender(cfg.Discord)
			if dryRun {
				sender = notify.LogSender{W: cmd.OutOrStdout()}
			}

			report, err := notify.NewDispatcher(sender, concurrency, log).Dispatch(cmd.Context(), entries)
			out, _ := json.Marshal(report)
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().UintVarP(&portfolio, "portfolio", "p", 0, "only remind this portfolio")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the messages instead of posting them")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "channels posted in parallel")
	return cmd
}
