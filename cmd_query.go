package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/config"
	"github.com/nodeadmin/go-propagate/ontology"
)

// ontologyFromArg loads the ontology named on the command line.
func ontologyFromArg(ctx context.Context, g *globalFlags, location string) (*ontology.Ontology, *zap.Logger, error) {
	cfg, err := g.resolve(nil)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	format := detectFormat(location, "auto")
	if format == "" {
		format = "obo"
	}
	o, err := loadOntologyAs(ctx, cfg, log, location, format)
	if err != nil {
		return nil, nil, err
	}
	return o, log, nil
}

func newTermsCmd(g *globalFlags) *cobra.Command {
	var (
		namespace string
		obsolete  bool
	)
	cmd := &cobra.Command{
		Use:   "terms <ontology>",
		Short: "List term ids and canonical names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, log, err := ontologyFromArg(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			defer log.Sync()

			terms := o.TermList(ontology.Filter{Namespace: namespace})
			if obsolete {
				terms = o.ObsoleteTerms()
			}
			for _, t := range terms {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Name, t.Namespace)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "only list terms of this namespace")
	cmd.Flags().BoolVar(&obsolete, "obsolete", false, "list obsolete terms instead")
	return cmd
}

func newAncestorsCmd(g *globalFlags) *cobra.Command {
	return newClosureCmd(g, "ancestors", "List the same-namespace ancestors of a term", (*ontology.Ontology).Ancestors)
}

func newDescendantsCmd(g *globalFlags) *cobra.Command {
	return newClosureCmd(g, "descendants", "List the same-namespace descendants of a term", (*ontology.Ontology).Descendants)
}

func newClosureCmd(g *globalFlags, use, short string, closure func(*ontology.Ontology, string) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ontology> <term-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, log, err := ontologyFromArg(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			defer log.Sync()

			if _, ok := o.Term(args[1]); !ok {
				return fmt.Errorf("term %s not found", args[1])
			}
			for _, id := range closure(o, args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newLeavesCmd(g *globalFlags) *cobra.Command {
	flags := &config.Config{}
	var minAnnotations int

	cmd := &cobra.Command{
		Use:   "leaves",
		Short: "List childless terms with enough propagated annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.resolve(flags)
			if err != nil {
				return err
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

			namespace := cfg.Namespace
			if namespace == "" {
				namespace = "biological_process"
			}
			for _, t := range o.Leaves(namespace, minAnnotations) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", t.ID, t.Name, t.AnnotationCount())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.OBO, "obo", "", "ontology in OBO format (path or URL)")
	cmd.Flags().StringVar(&flags.OWL, "owl", "", "ontology in OWL RDF/XML format (path or URL)")
	cmd.Flags().StringVar(&flags.Annotations, "annotations", "", "tab separated annotation file (GAF)")
	cmd.Flags().StringVar(&flags.GMT, "gmt", "", "gene sets keyed by term id")
	cmd.Flags().StringVar(&flags.Namespace, "namespace", "", "namespace of the leaves (default biological_process)")
	cmd.Flags().IntVar(&minAnnotations, "min", 10, "minimum number of annotations")
	return cmd
}

func newXrefsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "xrefs <ontology> <db>",
		Short: "Map external ids of a database to the terms citing them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, log, err := ontologyFromArg(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			defer log.Sync()

			mapping := o.XrefMapping(args[1])
			keys := make([]string, 0, len(mapping))
			for k := range mapping {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, strings.Join(mapping[k], "\t"))
			}
			return nil
		},
	}
}
