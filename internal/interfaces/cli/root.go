package cli

import (
	"context"
	"errors"

	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/spf13/cobra"
)

// opener returns the App a command runs against
type opener func(ctx context.Context) (*App, error)

type rootOptions struct {
	configPath string
	verbose    bool
	userID     string

	open opener
	app  *App
}

// NewRootCommand builds crmctl
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	opts.open = func(ctx context.Context) (*App, error) {
		return OpenApp(ctx, opts.configPath, opts.verbose)
	}
	return newRootCommand(opts)
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Administer CRM users and data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			opts.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.Close()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringVarP(&opts.userID, "user", "u", identity.DemoUserID, "user whose data is read or changed")

	root.AddCommand(
		newUsersCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newBackupCommand(opts),
		newSearchCommand(opts),
	)
	return root
}

// Execute runs crmctl with the process arguments
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

var errMissingFlag = errors.New("required flag missing")
