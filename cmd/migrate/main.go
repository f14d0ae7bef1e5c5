// Command migrate manages the postgres kv_entries schema.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/circlesoft/crm/internal/infrastructure/migration"
	"github.com/circlesoft/crm/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	dir        string
	configPath string
	logLevel   string

	log *zap.Logger
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the postgres schema of the key-value store",
		Long:          "Database settings come from config.toml or CRM_DATABASE_HOST, CRM_DATABASE_PORT,\nCRM_DATABASE_USER, CRM_DATABASE_PASSWORD, CRM_DATABASE_DBNAME, CRM_DATABASE_SSLMODE.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			log, err := logger.New(&logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync(opts.log)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.dir, "path", "", "migrations directory (default: embedded set; create uses ./migrations)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./config.toml)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return opts.run(func(m *migration.Migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return opts.run(func(m *migration.Migrator) error { return m.Down() })
			},
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations; negative n rolls back",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return opts.run(func(m *migration.Migrator) error { return m.Steps(n) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return opts.run(func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					if version == 0 {
						opts.log.Info("No migrations applied")
						return nil
					}
					opts.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the version without running migrations, clearing the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				opts.log.Warn("Forcing migration version", zap.Int("version", version))
				return opts.run(func(m *migration.Migrator) error { return m.Force(version) })
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Write an empty up/down migration pair",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				dir := opts.dir
				if dir == "" {
					dir = "migrations"
				}
				mf, err := migration.CreateMigration(dir, args[0])
				if err != nil {
					return err
				}
				opts.log.Info("Migration created",
					zap.String("version", mf.Version),
					zap.String("up_file", mf.UpPath),
					zap.String("down_file", mf.DownPath),
				)
				return nil
			},
		},
	)
	return root
}

// run opens the configured database and hands fn a migrator over it
func (o *options) run(fn func(*migration.Migrator) error) error {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if o.dir != "" {
		m, err = migration.NewFromDir(db, o.dir, o.log)
	} else {
		m, err = migration.New(db, migrations.FS, o.log)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	return fn(m)
}
