// Command searchctl is the operator CLI: list variants, run one-off searches,
// build artifacts, and serve the search tool over MCP stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/mcptool"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/variant"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/logger"
)

// Version is injected at build time.
var Version = "dev"

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

type globals struct {
	configPath string
	variant    string
	logLevel   string
}

func registerGlobals(fs *pflag.FlagSet, g *globals) {
	fs.StringVarP(&g.configPath, "config", "c", "", "path to config file")
	fs.StringVarP(&g.variant, "variant", "v", "", "variant name (default engine.variant)")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level; logs go to stderr")
}

func (g *globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.variant != "" {
		cfg.Engine.Variant = g.variant
	}
	// stdout carries command output and the MCP stream
	logger.SetupWriter(os.Stderr, g.logLevel, "text")
	return cfg, nil
}

// Execute runs the CLI with args, writing command output to out.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	g := &globals{}
	root := &cobra.Command{
		Use:           "searchctl",
		Short:         "Abstract search engine CLI",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	registerGlobals(root.PersistentFlags(), g)
	root.AddCommand(
		variantsCmd(g),
		searchCmd(g),
		buildCmd(g),
		mcpCmd(g),
	)
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func variantsCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List registered variants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			reg, err := variant.Load(cfg.Engine.VariantsFile)
			if err != nil {
				return err
			}
			list := reg.List()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDATASET\tGRANULARITY\tFILTERS\tTHRESHOLD")
			for _, v := range list {
				filters := make([]string, len(v.Filters))
				for i, f := range v.Filters {
					filters[i] = string(f)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n", v.Name, v.Dataset, v.Granularity(), strings.Join(filters, ","), v.Threshold)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func searchCmd(g *globals) *cobra.Command {
	var req engine.Request
	var authors string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run one search against local artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Query = args[0]
			}
			req.Names = engine.ParseNames(authors)
			cfg, err := g.load()
			if err != nil {
				return err
			}
			rt, err := bootstrap.Open(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			e, err := rt.Engine(cmd.Context(), cfg.Engine.Variant)
			if err != nil {
				return err
			}
			resp, err := e.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), mcptool.Format(resp))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "free-text query")
	cmd.Flags().StringVarP(&authors, "authors", "a", "", "comma-separated author names")
	cmd.Flags().StringVarP(&req.Period, "published", "p", "", "inclusive publication range from,to (ISO dates, either side may be empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}

func buildCmd(g *globals) *cobra.Command {
	var opts indexer.Options
	var all bool
	cmd := &cobra.Command{
		Use:   "build [variant...]",
		Short: "Build artifacts for variants (default engine.variant)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			rt, err := bootstrap.Open(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			names := args
			if all {
				names = nil
				for _, v := range rt.Registry.List() {
					names = append(names, v.Name)
				}
			}
			if len(names) == 0 {
				names = []string{cfg.Engine.Variant}
			}
			reports, err := rt.Build(cmd.Context(), names, opts)
			for _, rep := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: wrote %d, reused %d in %s\n",
					rep.Variant, len(rep.Written), len(rep.Skipped), rep.Took.Round(time.Millisecond))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "build every registered variant")
	cmd.Flags().IntVar(&opts.MinDF, "min-df", 1, "minimum document frequency for vocabulary terms")
	cmd.Flags().IntVar(&opts.Clusters, "clusters", 16, "k for k-means sentence clusters")
	cmd.Flags().IntVar(&opts.EmbedBatch, "embed-batch", 64, "sentences per embedding request")
	return cmd
}

func mcpCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search tool over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			rt, err := bootstrap.Open(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			e, err := rt.Engine(cmd.Context(), cfg.Engine.Variant)
			if err != nil {
				return err
			}
			return mcptool.NewServer(e, Version).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
