package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/config"
	"github.com/nodeadmin/go-propagate/ontology"
)

func newPropagateCmd(g *globalFlags) *cobra.Command {
	flags := &config.Config{}
	var ids []string

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Load annotations, propagate them up the ontology and export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.resolve(flags)
			if err != nil {
				return err
			}
			// Merge only sees true, so an explicit --assoc=false wins here.
			if cmd.Flags().Changed("assoc") {
				cfg.Output.Assoc = flags.Output.Assoc
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			o, err := loadOntology(ctx, cfg, log)
			if err != nil {
				return err
			}
			if err := populate(ctx, cfg, o); err != nil {
				return err
			}
			if err := o.Propagate(); err != nil {
				return err
			}
			if err := remap(ctx, cfg, o); err != nil {
				return err
			}

			f := ontology.Filter{IDs: ids, Namespace: cfg.Namespace}
			if err := export(cmd, o, cfg.Output, f); err != nil {
				return err
			}
			log.Info("export complete", zap.String("format", cfg.Output.Format), zap.String("path", cfg.Output.Path))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.OBO, "obo", "", "ontology in OBO format (path or URL)")
	cmd.Flags().StringVar(&flags.OWL, "owl", "", "ontology in OWL RDF/XML format (path or URL)")
	cmd.Flags().StringVar(&flags.Annotations, "annotations", "", "tab separated annotation file (GAF)")
	cmd.Flags().StringVar(&flags.GMT, "gmt", "", "gene sets keyed by term id")
	cmd.Flags().StringVar(&flags.IDMap, "idmap", "", "gene id mapping applied after propagation")
	cmd.Flags().StringVar(&flags.Namespace, "namespace", "", "only export terms of this namespace")
	cmd.Flags().StringSliceVar(&ids, "term", nil, "only export these term ids")
	cmd.Flags().StringVar(&flags.Output.Format, "format", "", "output format: gmt, table, matrix, dir, json")
	cmd.Flags().StringVarP(&flags.Output.Path, "output", "o", "", "output file or directory (default stdout)")
	cmd.Flags().BoolVar(&flags.Output.Assoc, "assoc", false, "write the table in association layout")
	return cmd
}

func export(cmd *cobra.Command, o *ontology.Ontology, out config.OutputConfig, f ontology.Filter) (err error) {
	if out.Format == config.FormatDir {
		return o.WriteDir(cmd.Context(), out.Path, f)
	}

	var w io.Writer = cmd.OutOrStdout()
	if out.Path != "" {
		file, err := os.Create(out.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = file
	}

	switch out.Format {
	case config.FormatGMT:
		return o.WriteGMT(w, f)
	case config.FormatTable:
		return o.WriteTable(w, f, out.Assoc)
	case config.FormatMatrix:
		return o.WriteMatrix(w, f)
	case config.FormatJSON:
		return o.WriteJSONPretty(w, f)
	}
	return fmt.Errorf("unknown output format %q", out.Format)
}
