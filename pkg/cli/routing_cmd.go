package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newRoutingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routing TABLE",
		Short: "Show the routing snapshot for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routing, err := clientFromCmd(cmd).RoutingTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd.Root().PersistentFlags()) == "json" {
				return printJSON(os.Stdout, routing)
			}

			var rows [][]string
			for physical, hosts := range routing {
				for host, segments := range hosts {
					rows = append(rows, []string{
						physical, host, fmt.Sprintf("%d", len(segments)), strings.Join(segments, ","),
					})
				}
			}
			sort.Slice(rows, func(i, j int) bool {
				if rows[i][0] != rows[j][0] {
					return rows[i][0] < rows[j][0]
				}
				return rows[i][1] < rows[j][1]
			})
			printTable(os.Stdout, []string{"PHYSICAL TABLE", "HOST", "COUNT", "SEGMENTS"}, rows)
			return nil
		},
	}
}

func newTimeBoundaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeboundary TABLE",
		Short: "Show the hot/cold time boundary for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boundary, err := clientFromCmd(cmd).TimeBoundary(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd.Root().PersistentFlags()) == "json" {
				return printJSON(os.Stdout, boundary)
			}

			printTable(os.Stdout, []string{"VARIANT", "PREDICATE"}, [][]string{
				{"online", boundary["online"]},
				{"offline", boundary["offline"]},
			})
			return nil
		},
	}
}
