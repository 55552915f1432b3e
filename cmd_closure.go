package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/closure"
	"github.com/nodeadmin/go-propagate/ontology"
)

func newClosureExportCmd(g *globalFlags) *cobra.Command {
	var (
		namespace string
		workers   int
		tsv       bool
	)
	cmd := &cobra.Command{
		Use:   "closure <ontology>",
		Short: "Write every term's same-namespace ancestors and direct parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, log, err := ontologyFromArg(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			defer log.Sync()

			h, err := closure.Build(cmd.Context(), o, ontology.Filter{Namespace: namespace}, workers)
			if err != nil {
				return err
			}
			log.Info("computed closure",
				zap.Int("terms", h.Stats.TermCount),
				zap.Int("inferred", h.Stats.InferredAncestors),
				zap.Int64("total_ms", h.Stats.TotalTimeMs))
			if tsv {
				return closure.WriteTSV(cmd.OutOrStdout(), h)
			}
			return closure.WriteHierarchyJSON(cmd.OutOrStdout(), h)
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "only include terms of this namespace")
	cmd.Flags().BoolVar(&tsv, "tsv", false, "write one tab separated line of ancestors per term")
	cmd.Flags().IntVar(&workers, "workers", 0, "saturation workers (default: number of CPUs)")
	return cmd
}
