package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/application/notification"
	"github.com/spf13/cobra"
)

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search inquiries and orders; without a query, read queries from stdin as you type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.app.Workspaces.Manager(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				printResults(out, args[0], crmapp.Search(m.Snapshot(), args[0]))
				return nil
			}

			var mu sync.Mutex
			d := notification.NewDebouncer(opts.app.Config.Notification.Debounce, func(q string) {
				results := crmapp.Search(m.Snapshot(), q)
				mu.Lock()
				defer mu.Unlock()
				printResults(out, q, results)
			})
			defer d.Stop()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				d.Push(strings.TrimSpace(scanner.Text()))
			}
			d.Flush()
			return scanner.Err()
		},
	}
}

func printResults(w io.Writer, query string, results []crmapp.SearchResult) {
	if len([]rune(query)) < crmapp.MinSearchLength {
		fmt.Fprintf(w, "%q: type at least %d characters\n", query, crmapp.MinSearchLength)
		return
	}
	fmt.Fprintf(w, "%q: %d result(s)\n", query, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "  [%s] %s  %s\n", r.Type, r.Title, r.Subtitle)
	}
}
