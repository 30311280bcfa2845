// Package cmd provides the CLI commands for esquery.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/esmodel"
	"github.com/kailas-cloud/esmodel/internal/config"
	"github.com/kailas-cloud/esmodel/internal/version"
)

// globalOptions are the connection flags shared by every command.
type globalOptions struct {
	env      string
	driver   string
	addrs    []string
	username string
	password string
}

// target selects what a command searches: a configured model or an ad-hoc index.
type target struct {
	model   string
	index   string
	docType string
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.model, "model", "m", "", "Configured model name")
	cmd.Flags().StringVarP(&t.index, "index", "i", "", "Index name(s), overrides the model index")
	cmd.Flags().StringVar(&t.docType, "type", "", "Document type, overrides the model type")
}

// NewRootCmd creates the root command for the esquery CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "esquery",
		Short: "Search Elasticsearch and OpenSearch models from the command line",
		Long: `esquery runs searches and scrolls against the models defined in
config/<env>.yaml, or against any index when --addr and --index are given.

A query is free text (sent as q), or a JSON object (sent as the body)
when its first character is '{'.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("esquery version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.driver, "driver", config.DriverElasticsearch,
		"Engine driver when --addr is set: elasticsearch, opensearch")
	cmd.PersistentFlags().StringSliceVar(&opts.addrs, "addr", nil, "Engine URL(s); skips the config file")
	cmd.PersistentFlags().StringVar(&opts.username, "username", os.Getenv("SEARCH_USERNAME"), "Basic auth user")
	cmd.PersistentFlags().StringVar(&opts.password, "password", os.Getenv("SEARCH_PASSWORD"), "Basic auth password")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newScrollCmd(opts))
	cmd.AddCommand(newModelsCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute loads .env and runs the root command until it finishes or the
// process is interrupted.
func Execute() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// openModel connects to the engine and resolves the search target.
func openModel(opts *globalOptions, t target) (*esmodel.Client, *esmodel.Model, error) {
	if len(opts.addrs) > 0 {
		if t.index == "" {
			return nil, nil, errors.New("--index is required with --addr")
		}
		client, err := newClient(config.SearchConfig{
			Driver:   opts.driver,
			Addrs:    opts.addrs,
			Username: opts.username,
			Password: opts.password,
		})
		if err != nil {
			return nil, nil, err
		}
		m, err := esmodel.NewModel(t.index, t.docType, client)
		if err != nil {
			return nil, nil, err
		}
		return client, m, nil
	}

	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cfg.Search)
	if err != nil {
		return nil, nil, err
	}

	index, docType := t.index, t.docType
	if t.model != "" {
		mc, ok := cfg.Models[t.model]
		if !ok {
			return nil, nil, fmt.Errorf("unknown model %q (known: %v)", t.model, cfg.ModelNames())
		}
		if index == "" {
			index = mc.Index
		}
		if docType == "" {
			docType = mc.Type
		}
	}
	if index == "" {
		return nil, nil, errors.New("--model or --index is required")
	}

	m, err := esmodel.NewModel(index, docType, client)
	if err != nil {
		return nil, nil, err
	}
	return client, m, nil
}

func newClient(cfg config.SearchConfig) (*esmodel.Client, error) {
	opts := []esmodel.Option{esmodel.WithAddrs(cfg.Addrs...)}
	if cfg.Username != "" {
		opts = append(opts, esmodel.WithBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.DisableRetry {
		opts = append(opts, esmodel.WithoutRetry())
	}

	switch cfg.Driver {
	case config.DriverElasticsearch:
		if cfg.APIKey != "" {
			opts = append(opts, esmodel.WithAPIKey(cfg.APIKey))
		}
		if cfg.CloudID != "" {
			opts = append(opts, esmodel.WithCloudID(cfg.CloudID))
		}
		return esmodel.NewElasticsearchClient(opts...)
	case config.DriverOpenSearch:
		if cfg.InsecureTLS {
			opts = append(opts, esmodel.WithInsecureTLS())
		}
		return esmodel.NewOpenSearchClient(opts...)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
