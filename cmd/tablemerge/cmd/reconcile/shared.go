// Package reconcile implements the commands that work on a pair of
// datasets: match, classify, plan and merge.
package reconcile

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/globals"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/internal/sources"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/logging"
)

// pair is a loaded left/right source pair.
type pair struct {
	leftURI, rightURI   string
	left, right         *dataset.Dataset
	leftType, rightType sources.Type
}

// sameDatabase reports whether both sides are tables in the configured
// database, so a merge can run there.
func (p *pair) sameDatabase() bool {
	return strings.HasPrefix(p.leftURI, "pg:") && strings.HasPrefix(p.rightURI, "pg:")
}

// loadPair reads both sources concurrently.
func loadPair(ctx context.Context, app application.Application, leftURI, rightURI string) (*pair, error) {
	p := &pair{leftURI: leftURI, rightURI: rightURI}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, t, err := load(ctx, app, leftURI)
		p.left, p.leftType = d, t
		return err
	})
	g.Go(func() error {
		d, t, err := load(ctx, app, rightURI)
		p.right, p.rightType = d, t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Plans address each side by name, so two files called data.csv
	// would collide.
	if p.left.Name() == p.right.Name() {
		p.right = &dataset.Dataset{Schema: p.right.Schema.Rename(p.right.Name() + "_right"), Rows: p.right.Rows}
	}
	return p, nil
}

func load(ctx context.Context, app application.Application, uri string) (*dataset.Dataset, sources.Type, error) {
	r, err := app.Open(ctx, uri)
	if err != nil {
		return nil, "", err
	}
	d, err := r.Read(logging.WithDataset(ctx, r.Name()))
	if err != nil {
		return nil, "", err
	}
	return d, r.Type(), nil
}

// engineFor builds an engine from the configured policy and the plan flags
// set on cmd.
func engineFor(cmd *cobra.Command, app application.Application, flags *globals.PlanFlags) (tablemerge.Engine, error) {
	opts, err := flags.Options(cmd)
	if err != nil {
		return nil, err
	}
	return app.Engine(opts...)
}

// render writes raw or its document in the configured format.
func render(cmd *cobra.Command, app application.Application, raw any, doc func() output.Document) error {
	return output.Render(cmd.OutOrStdout(), output.Format(app.OutputFormat()), raw, doc)
}

func wide(app application.Application) bool {
	return app.OutputFormat() == string(output.FormatWide)
}
