package cmd

import (
	"fmt"
	"io"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/spf13/cobra"

	"github.com/arbelos/polysched/schedule"
)

const statsDesc = `
Read a schedule-constraint document and print counts of its contents:
the number of relations, the number of basic relations they consist of,
and the number of inter-statement consecutivity constraints.
`

func newStatsCmd(logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "print counts for a schedule-constraint document",
		Long:  statsDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return runStats(args[0], wInfo)
		},
	}
}

func runStats(path string, wr io.Writer) error {
	s, err := schedule.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(wr, "relations:       %d\n", s.NRels())
	fmt.Fprintf(wr, "basic relations: %d\n", s.NBasicRels())
	fmt.Fprintf(wr, "inter:           %d\n", s.NInter())
	return nil
}
