package cmd

import (
	"fmt"
	"io"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arbelos/polysched/pip"
	"github.com/arbelos/polysched/rel"
)

const lexDesc = `
Compute, for every point of DOMAIN, the lexicographically %s output
tuple RELATION associates with it. Both arguments use the usual textual
notation, e.g.

  polysched %s '{ [i] -> [j] : 0 <= j <= i }' '{ [i] : 0 <= i <= 10 }'

The part of the domain without any feasible output is reported as well.
`

type lexOptions struct {
	max bool
}

func newLexCmd(logger log.Logger, max bool) *cobra.Command {
	o := &lexOptions{max: max}
	name, dir := "lexmin", "smallest"
	if max {
		name, dir = "lexmax", "largest"
	}

	return &cobra.Command{
		Use:   name + " RELATION DOMAIN",
		Short: fmt.Sprintf("compute the lexicographically %s image over a domain", dir),
		Long:  fmt.Sprintf(lexDesc, dir, name),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return o.run(args[0], args[1], wInfo)
		},
	}
}

func (o *lexOptions) run(relStr, domStr string, wr io.Writer) error {
	bmap, err := rel.ParseBasicRel(relStr)
	if err != nil {
		return errors.Wrap(err, "parsing relation")
	}
	dom, err := rel.ParseBasicRel(domStr)
	if err != nil {
		return errors.Wrap(err, "parsing domain")
	}
	if !dom.Space.IsSet() {
		return errors.New("domain must be a set")
	}

	// parse in a common parameter list so the dimensions line up
	names := rel.MergeParams(bmap.Space.Params, dom.Space.Params)
	bmap = bmap.AlignParams(names)
	dom = dom.AlignParams(names)
	if bmap.NIn() != dom.NOut() {
		return errors.Errorf("relation has %d input dimensions, domain has %d",
			bmap.NIn(), dom.NOut())
	}

	log.Debugf("solving over %s", bmap.Space)
	var res *rel.Rel
	var rest *rel.Set
	if o.max {
		res, rest, err = pip.LexMax(bmap, dom, true)
	} else {
		res, rest, err = pip.LexMin(bmap, dom, true)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(wr, "result:   %s\n", res)
	if rest != nil {
		fmt.Fprintf(wr, "residual: %s\n", rest)
	}
	return nil
}
