package main

import (
	"taskboard/internal/database"
	"taskboard/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if !skipMigrate {
				if err := database.Migrate(db); err != nil {
					return err
				}
				log.Info("migrations applied")
			}

			s, err := server.New(cfg, db, log)
			if err != nil {
				return err
			}
			return s.Run()
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}
