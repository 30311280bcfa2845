package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/esmodel"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	target
	size     int
	from     int
	sort     []string
	extra    []string // key=value engine parameters
	bodyFile string
	format   string // "json", "hits"
}

func newSearchCmd(g *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run a search and print the engine reply",
		Long: `Run a search against a model or index.

Examples:
  esquery search -m articles "title:go AND published:true"
  esquery search -m articles '{"query":{"match":{"title":"go"}}}' --size 5
  esquery search --addr http://localhost:9200 -i logs-* --body-file query.json --format hits
  esquery search -m articles "go" -o request_cache=true -o timeout=2s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(strings.Join(args, " "), opts.bodyFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			extra, err := parseExtra(opts.extra)
			if err != nil {
				return err
			}

			_, m, err := openModel(g, opts.target)
			if err != nil {
				return err
			}

			b := m.NewSearch().Query(input)
			if opts.size >= 0 {
				b.Size(opts.size)
			}
			if opts.from > 0 {
				b.From(opts.from)
			}
			if len(opts.sort) > 0 {
				b.Sort(opts.sort...)
			}
			for k, v := range extra {
				b.Option(k, v)
			}

			resp := m.Do(b.Build())
			raw, err := resp.Raw(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.format, raw)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&opts.size, "size", "n", -1, "Maximum number of hits (engine default when unset)")
	cmd.Flags().IntVar(&opts.from, "from", 0, "Offset of the first hit")
	cmd.Flags().StringSliceVar(&opts.sort, "sort", nil, "Sort fields, e.g. date:desc")
	cmd.Flags().StringArrayVarP(&opts.extra, "opt", "o", nil, "Extra engine parameter key=value (repeatable)")
	cmd.Flags().StringVar(&opts.bodyFile, "body-file", "", "Read the query from a file ('-' for stdin)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, hits")

	return cmd
}

// readInput returns the query from args or from a body file.
func readInput(args, bodyFile string, stdin io.Reader) (string, error) {
	if bodyFile == "" {
		return args, nil
	}
	if args != "" {
		return "", fmt.Errorf("pass either a query or --body-file, not both")
	}

	var (
		data []byte
		err  error
	)
	if bodyFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(bodyFile) //nolint:gosec // user-supplied path is the point
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// parseExtra turns key=value pairs into options. Repeated keys become lists.
func parseExtra(pairs []string) (esmodel.Options, error) {
	opts := esmodel.Options{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --opt %q, want key=value", p)
		}
		switch prev := opts[k].(type) {
		case nil:
			opts[k] = v
		case string:
			opts[k] = []string{prev, v}
		case []string:
			opts[k] = append(prev, v)
		}
	}
	return opts, nil
}

func printResult(w io.Writer, format string, raw esmodel.Raw) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	case "hits":
		total := raw.Total()
		if _, err := fmt.Fprintf(w, "%d hits (%s), took %dms\n", total.Value, total.Relation, raw.Took()); err != nil {
			return err
		}
		for _, h := range raw.Hits() {
			if err := printHit(w, h); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (json, hits)", format)
	}
}

func printHit(w io.Writer, h esmodel.Hit) error {
	src, err := json.Marshal(h.Source())
	if err != nil {
		return err
	}
	score := "-"
	if s, ok := h.Score(); ok {
		score = fmt.Sprintf("%.4f", s)
	}
	_, err = fmt.Fprintf(w, "%s\t%s\t%s\n", h.ID(), score, src)
	return err
}
