package cmd

import (
	"io"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/spf13/cobra"

	"github.com/arbelos/polysched/schedule"
)

const alignDesc = `
Read a schedule-constraint document, rewrite every field to one common
parameter list and print the resulting document.
`

func newAlignCmd(logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "align FILE",
		Short: "align the parameters of a schedule-constraint document",
		Long:  alignDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return runAlign(args[0], wInfo)
		},
	}
}

func runAlign(path string, wr io.Writer) error {
	s, err := schedule.ReadFile(path)
	if err != nil {
		return err
	}
	return s.AlignParams().Write(wr)
}
