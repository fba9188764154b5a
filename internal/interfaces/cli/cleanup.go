package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CleanupOutput reports what a cleanup removed.
type CleanupOutput struct {
	Scanned int      `json:"scanned"`
	Removed []string `json:"removed"`
	Failed  int      `json:"failed"`
}

func (o CleanupOutput) String() string {
	return fmt.Sprintf("scanned %d, removed %d, failed %d", o.Scanned, len(o.Removed), o.Failed)
}

func (o CleanupOutput) TableHeaders() []string { return []string{"SCANNED", "REMOVED", "FAILED", "SESSIONS"} }

func (o CleanupOutput) TableRows() [][]string {
	return [][]string{{
		fmt.Sprint(o.Scanned),
		fmt.Sprint(len(o.Removed)),
		fmt.Sprint(o.Failed),
		strings.Join(o.Removed, ","),
	}}
}

func newCleanupCmd() *cobra.Command {
	var sessions []string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired session directories",
		Long: "Run one workspace sweep, removing every session directory older than\n" +
			"workspace.ttl.  With --session only the named sessions are removed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := buildApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(sessions) > 0 {
				o := CleanupOutput{Scanned: len(sessions), Removed: []string{}}
				for _, id := range sessions {
					if err := a.Lifecycle.Delete(cmd.Context(), id); err != nil {
						PrintError(cmd, err)
						o.Failed++
						continue
					}
					o.Removed = append(o.Removed, id)
				}
				return PrintResult(cmd, o)
			}

			report, err := a.Lifecycle.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			o := CleanupOutput{Scanned: report.Scanned, Removed: report.Removed, Failed: report.Failed}
			if o.Removed == nil {
				o.Removed = []string{}
			}
			return PrintResult(cmd, o)
		},
	}

	cmd.Flags().StringSliceVar(&sessions, "session", nil, "session ids to remove")
	return cmd
}

//Personal.AI order the ending
