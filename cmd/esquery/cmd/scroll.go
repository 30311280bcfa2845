package cmd

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/esmodel"
)

// scrollOptions holds CLI flags for scroll.
type scrollOptions struct {
	target
	size      int
	keepAlive time.Duration
	limit     int
}

// exportedHit is one NDJSON line written by scroll.
type exportedHit struct {
	ID     string         `json:"_id"`
	Index  string         `json:"_index"`
	Source map[string]any `json:"_source"`
}

func newScrollCmd(g *globalOptions) *cobra.Command {
	var opts scrollOptions

	cmd := &cobra.Command{
		Use:   "scroll [query]",
		Short: "Export every matching document as NDJSON",
		Long: `Page through all matching documents with the scroll API and write
one JSON document per line. The scroll context is released at the end.

Examples:
  esquery scroll -m logs "level:error" > errors.ndjson
  esquery scroll -m articles --size 1000 --keep-alive 5m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, m, err := openModel(g, opts.target)
			if err != nil {
				return err
			}
			input := strings.Join(args, " ")
			if input == "" {
				input = `{"query":{"match_all":{}}}`
			}

			def := m.NewSearch().
				Query(input).
				Size(opts.size).
				Sort("_doc").
				Scroll(opts.keepAlive).
				Build()

			_, err = export(cmd.Context(), cmd.OutOrStdout(), client, m, m.Do(def), opts)
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&opts.size, "size", "n", 500, "Documents per page")
	cmd.Flags().DurationVar(&opts.keepAlive, "keep-alive", time.Minute, "Scroll context keep-alive")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Stop after this many documents (0 = all)")

	return cmd
}

// export writes every page starting at first and returns the number of
// documents written.
func export(
	ctx context.Context, w io.Writer, client *esmodel.Client, m *esmodel.Model,
	first *esmodel.Response, opts scrollOptions,
) (int, error) {
	enc := json.NewEncoder(w)
	page := first
	written := 0
	var scrollID string

	defer func() {
		if scrollID != "" {
			// ctx may already be cancelled.
			_ = client.ClearScroll(context.WithoutCancel(ctx), scrollID)
		}
	}()

	for {
		hits, err := page.Hits(ctx)
		if err != nil {
			return written, err
		}
		if id, _ := page.ScrollID(ctx); id != "" {
			scrollID = id
		}
		if len(hits) == 0 {
			return written, nil
		}

		for _, h := range hits {
			if err := enc.Encode(exportedHit{ID: h.ID(), Index: h.Index(), Source: h.Source()}); err != nil {
				return written, err
			}
			written++
			if opts.limit > 0 && written >= opts.limit {
				return written, nil
			}
		}

		page = m.Scroll(scrollID, esmodel.Options{"scroll": opts.keepAlive})
	}
}
