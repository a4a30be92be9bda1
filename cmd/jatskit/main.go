// Command jatskit converts DOCX and HTML manuscripts to JATS XML.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/jatskit"
	"github.com/tsawler/jatskit/config"
	"github.com/tsawler/jatskit/crossref"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jatskit",
		Short: "Convert journal manuscripts to JATS XML",
		Long: `jatskit reads a manuscript written with the journal's Word template
(DOCX, or HTML saved from Word) and writes JATS 1.2 journal-publishing XML.

Bibliographic metadata is never read from the manuscript; supply it with
flags or a YAML config file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "log conversion stages")
	rootCmd.PersistentFlags().String("config", "", "YAML config file")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(blocksCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// metadataFlags binds every metadata field to a flag.
func metadataFlags(cmd *cobra.Command, m *jatskit.Metadata) {
	f := cmd.Flags()
	f.StringVar(&m.Journal, "journal", "", "journal title")
	f.StringVar(&m.JournalAbbrev, "journal-abbrev", "", "NLM title abbreviation")
	f.StringVar(&m.JournalID, "journal-id", "", "publisher journal id")
	f.StringVar(&m.JournalURL, "journal-url", "", "journal home page")
	f.StringVar(&m.Publisher, "publisher", "", "publisher name")
	f.StringVar(&m.ISSNPrint, "issn-print", "", "print ISSN")
	f.StringVar(&m.ISSNElectronic, "issn-electronic", "", "electronic ISSN")
	f.StringVar(&m.DOI, "doi", "", "article DOI")
	f.StringVar(&m.Volume, "volume", "", "volume")
	f.StringVar(&m.Issue, "issue", "", "issue")
	f.StringVar(&m.Year, "year", "", "publication year")
	f.StringVar(&m.Month, "month", "", "publication month")
	f.StringVar(&m.Day, "day", "", "publication day")
	f.StringVar(&m.FirstPage, "fpage", "", "first page")
	f.StringVar(&m.LastPage, "lpage", "", "last page")
	f.StringVar(&m.ArticleType, "article-type", "", "article type (default research-article)")
	f.StringVar(&m.License, "license", "", "license code: cc-by-nc-4.0, cc-by-4.0 or cc-by-nc-nd-4.0")
	f.StringSliceVar(&m.PubFormats, "pub-format", nil, "publication formats to date (print, electronic)")
	f.BoolVar(&m.Crossref, "crossref", false, "enrich references from CrossRef")
}

// convertFlags holds the convert command's flag values.
type convertFlags struct {
	meta   jatskit.Metadata
	output string
	mailto string
	indent int
}

func (f *convertFlags) bind(cmd *cobra.Command) {
	metadataFlags(cmd, &f.meta)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&f.mailto, "mailto", "", "contact address sent to CrossRef")
	cmd.Flags().IntVar(&f.indent, "indent", 2, "spaces per nesting level, 0 for none")
}

// resolve layers the flags over cfg. A flag value wins over the config
// file, and --indent counts only when given explicitly.
func (f *convertFlags) resolve(cmd *cobra.Command, cfg *config.Config) jatskit.Metadata {
	if f.mailto != "" {
		cfg.Crossref.Mailto = f.mailto
	}
	if cmd.Flags().Changed("indent") {
		cfg.Indent = f.indent
	}
	return cfg.Apply(f.meta)
}

func convertCmd() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <manuscript>",
		Short: "Convert a manuscript to JATS XML",
		Long: `Convert a manuscript to JATS XML.

Example:
  jatskit convert paper.docx --config journal.yaml --doi 10.1234/j.2024.7 --volume 7 --issue 2 --year 2024 -o paper.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			meta := flags.resolve(cmd, cfg)

			table, err := cfg.Classifier()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			conv := jatskit.Open(args[0]).
				Metadata(meta).
				Logger(logger).
				Classifier(table).
				Indent(cfg.Indent).
				Context(ctx)

			if meta.Crossref {
				client, err := newCrossrefClient(cfg.Crossref, logger)
				if err != nil {
					return err
				}
				conv = conv.Enricher(client)
			}

			out, warnings, err := conv.XML()
			if err != nil {
				return err
			}
			if len(warnings) > 0 {
				fmt.Fprintln(os.Stderr, jatskit.FormatWarnings(warnings))
			}

			if flags.output == "" || flags.output == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(flags.output, out, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", flags.output, err)
			}
			logger.Info("wrote JATS document",
				zap.String("path", flags.output),
				zap.Int("warnings", len(warnings)),
			)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func newCrossrefClient(c config.CrossrefConfig, logger *zap.Logger) (*crossref.Client, error) {
	client := crossref.NewClient(c.Mailto, c.Timeout)
	client.MinScore = c.MinScore
	client.Log = logger
	if c.CacheDir != "" {
		doer, err := crossref.NewCachingDoer(c.CacheDir, client.Doer)
		if err != nil {
			return nil, err
		}
		doer.Log = logger
		client.Doer = doer
	}
	return client, nil
}

func blocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <manuscript>",
		Short: "List the manuscript blocks and the kind each style maps to",
		Long: `List the manuscript blocks and the kind each style maps to.

Useful for checking a manuscript against the template before converting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := cfg.Classifier()
			if err != nil {
				return err
			}

			blocks, warnings, err := jatskit.Open(args[0]).Classifier(table).Blocks()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tKIND\tSTYLE\tTEXT")
			for _, b := range blocks {
				style, text := b.Style, b.Snippet()
				if b.Table != nil {
					style, text = "(table)", fmt.Sprintf("%d rows", b.Table.RowCount())
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.Index, b.Kind, style, text)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(warnings) > 0 {
				fmt.Fprintln(os.Stderr, jatskit.FormatWarnings(warnings))
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("jatskit", version)
		},
	}
}
