package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var (
		sql               string
		hasFilter         bool
		pushdown          string
		segmentsPerSplit  int
		forbidSegmentScan bool
	)

	cmd := &cobra.Command{
		Use:   "plan TABLE",
		Short: "Plan splits for a table",
		Long:  "Plan the splits a query against TABLE would fan out into.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := PlanRequest{Table: args[0], Pushdown: pushdown}
			if sql != "" {
				req.Query = &struct {
					SQL       string `json:"sql"`
					HasFilter bool   `json:"hasFilter"`
				}{SQL: sql, HasFilter: hasFilter}
			}
			if cmd.Flags().Changed("segments-per-split") {
				req.SegmentsPerSplit = &segmentsPerSplit
			}
			if cmd.Flags().Changed("forbid-segment-scan") {
				req.ForbidSegmentScan = &forbidSegmentScan
			}

			resp, err := clientFromCmd(cmd).PlanSplits(cmd.Context(), req)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd.Root().PersistentFlags()) == "json" {
				return printJSON(os.Stdout, resp)
			}

			rows := make([][]string, 0, len(resp.Splits))
			for _, s := range resp.Splits {
				rows = append(rows, []string{
					s.Type, s.Host, fmt.Sprintf("%d", len(s.Segments)),
					strings.Join(s.Segments, ","), s.Query,
				})
			}
			printTable(os.Stdout, []string{"TYPE", "HOST", "COUNT", "SEGMENTS", "QUERY"}, rows)
			fmt.Fprintf(os.Stdout, "\n%d split(s)\n", len(resp.Splits))
			return nil
		},
	}

	cmd.Flags().StringVar(&sql, "sql", "", "generated query template (with placeholders)")
	cmd.Flags().BoolVar(&hasFilter, "has-filter", false, "template already carries a WHERE clause")
	cmd.Flags().StringVar(&pushdown, "pushdown", "PARTIAL", "pushdown status: FULL, PARTIAL, or UNKNOWN")
	cmd.Flags().IntVar(&segmentsPerSplit, "segments-per-split", 0, "override max segments per split")
	cmd.Flags().BoolVar(&forbidSegmentScan, "forbid-segment-scan", false, "override the segment-scan policy")
	return cmd
}
