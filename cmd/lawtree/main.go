package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/dgallion1/lawtree/internal/chunker"
	"github.com/dgallion1/lawtree/internal/config"
	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/judgment"
	"github.com/dgallion1/lawtree/internal/levels"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/parser"
	"github.com/dgallion1/lawtree/internal/pipeline"
	"github.com/dgallion1/lawtree/internal/watch"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lawtree",
		Short: "Legal document structure parser",
		Long: `lawtree reads court judgments and parliamentary bills and classifies
their paragraphs into a tree of numbered divisions.

Header particulars (neutral citation, case number, court, parties, judges,
counsel, dates) are tagged inline and summarized as document metadata.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Log classification details to stderr")

	root.AddCommand(parseCmd())
	root.AddCommand(blocksCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(familiesCmd())
	return root
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a document into its division tree",
		Long: `Parse a document and write it as indented JSON.

Supported formats: DOCX, HTML, Markdown, TXT, PDF, or a JSON block
stream (--blocks) as produced by "lawtree blocks".

Example:
  lawtree parse judgment.docx
  lawtree parse bill.html --family bill --view outline
  lawtree parse judgment.docx --meta override.yaml --view chunks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, _ := cmd.Flags().GetString("family")
			metaPath, _ := cmd.Flags().GetString("meta")
			view, _ := cmd.Flags().GetString("view")
			isBlocks, _ := cmd.Flags().GetBool("blocks")

			if err := checkView(view); err != nil {
				return err
			}
			cfg := config.Load()
			if family == "" {
				family = cfg.DefaultFamily
			}
			log := newLogger(cmd)

			req := pipeline.Request{Filename: args[0], Family: family}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if isBlocks {
				if req.Blocks, err = model.DecodeBlocks(data); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
			} else {
				req.Data = data
			}
			if metaPath != "" {
				if req.Override, err = metadata.LoadFile(metaPath); err != nil {
					return err
				}
			}

			doc, err := newWorker(cfg, log).Parse(context.Background(), req)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out, err := render(doc, view, cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringP("family", "f", "", "Document family (judgment, bill); defaults to DEFAULT_FAMILY")
	cmd.Flags().StringP("meta", "m", "", "Metadata override file (YAML or JSON)")
	cmd.Flags().String("view", "document", "Output view (document, outline, chunks)")
	cmd.Flags().Bool("blocks", false, "Input is a JSON block stream")

	return cmd
}

func newWorker(cfg config.Config, log *slog.Logger) *pipeline.Worker {
	families := pipeline.NewFamilies(judgment.Options{
		CrossHeadingMinPosition: cfg.JudgmentCrossHeadingMinPosition,
		HeaderScanLimit:         cfg.HeaderScanLimit,
	}, log)
	return pipeline.NewWorker(families, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, pipeline.NewParseStats(0), log)
}

var views = []string{"document", "outline", "chunks"}

func checkView(view string) error {
	if !slices.Contains(views, view) {
		return fmt.Errorf("unknown view %q (%s)", view, strings.Join(views, ", "))
	}
	return nil
}

// render shapes a parsed document for output.
func render(doc *doctree.Document, view string, cfg config.Config) (any, error) {
	switch view {
	case "document":
		return doc, nil
	case "outline":
		return doctree.Outline(doc), nil
	case "chunks":
		ccfg := chunker.DefaultConfig()
		ccfg.ChunkSize = cfg.DefaultChunkSize
		ccfg.ChunkOverlap = cfg.DefaultChunkOverlap
		return chunker.ChunkDocument(doc, ccfg), nil
	}
	return nil, checkView(view)
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Parse documents as they are added to or changed in a directory",
		Long: `Parse every supported document in DIR, then keep watching it and
re-parse each file that is created or written. The result for DIR/name.docx
is written to OUT/name.docx.json. Stop with Ctrl-C.

Example:
  lawtree watch ./inbox --out ./parsed --family judgment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, _ := cmd.Flags().GetString("family")
			metaPath, _ := cmd.Flags().GetString("meta")
			view, _ := cmd.Flags().GetString("view")
			out, _ := cmd.Flags().GetString("out")

			cfg := config.Load()
			if family == "" {
				family = cfg.DefaultFamily
			}
			if out == "" {
				out = args[0]
			}
			if err := checkView(view); err != nil {
				return err
			}
			var override *metadata.Override
			if metaPath != "" {
				var err error
				if override, err = metadata.LoadFile(metaPath); err != nil {
					return err
				}
			}

			log := newLogger(cmd)
			w := newWorker(cfg, log)
			parse := func(ctx context.Context, path string) (any, error) {
				data, err := os.ReadFile(path)
				if err != nil {
					return nil, err
				}
				doc, err := w.Parse(ctx, pipeline.Request{Filename: path, Family: family, Data: data, Override: override})
				if err != nil {
					return nil, err
				}
				return render(doc, view, cfg)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch.New(args[0], out, parse, log).Run(ctx)
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (defaults to DIR)")
	cmd.Flags().StringP("family", "f", "", "Document family (judgment, bill); defaults to DEFAULT_FAMILY")
	cmd.Flags().StringP("meta", "m", "", "Metadata override file (YAML or JSON)")
	cmd.Flags().String("view", "document", "Output view (document, outline, chunks)")

	return cmd
}

func blocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks FILE",
		Short: "Read a document into its block stream without classifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			r, err := parser.ForFile(args[0], parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			blocks, err := r.Read(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if blocks == nil {
				blocks = []model.Block{}
			}
			return writeJSON(cmd.OutOrStdout(), blocks)
		},
	}
	return cmd
}

func familiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List document families and the division kinds they recognize",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			opts := levels.JudgmentOptions{CrossHeadingMinPosition: cfg.JudgmentCrossHeadingMinPosition}
			out := cmd.OutOrStdout()
			for _, name := range append(append([]string{}, pipeline.FamilyNames...), "schedules") {
				reg, err := levels.ForFamily(name, opts)
				if err != nil {
					return err
				}
				var kinds []string
				for _, k := range reg.Kinds {
					kinds = append(kinds, k.Name)
				}
				fmt.Fprintf(out, "%-10s %s\n", name, strings.Join(kinds, ", "))
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
