package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/ontology"
)

func newJSONCmd(g *globalFlags) *cobra.Command {
	var (
		output    string
		format    string
		pretty    bool
		namespace string
	)

	cmd := &cobra.Command{
		Use:   "json <ontology>",
		Short: "Convert an OBO or OWL ontology to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.resolve(nil)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			input := args[0]
			inputFmt := detectFormat(input, format)
			if inputFmt == "" {
				return fmt.Errorf("cannot detect format for %q, use --format obo or --format owl", input)
			}
			o, err := loadOntologyAs(cmd.Context(), cfg, log, input, inputFmt)
			if err != nil {
				return err
			}

			start := time.Now()
			f := ontology.Filter{Namespace: namespace}
			switch {
			case output != "":
				err = o.WriteJSONFile(output, f)
			case pretty:
				err = o.WriteJSONPretty(cmd.OutOrStdout(), f)
			default:
				err = o.WriteJSON(cmd.OutOrStdout(), f)
			}
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			log.Info("wrote json", zap.Duration("elapsed", time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "auto", "input format: auto, obo, owl")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON written to stdout")
	cmd.Flags().StringVar(&namespace, "namespace", "", "only include terms of this namespace")
	return cmd
}
