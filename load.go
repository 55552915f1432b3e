package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/config"
	"github.com/nodeadmin/go-propagate/gmt"
	"github.com/nodeadmin/go-propagate/idmap"
	"github.com/nodeadmin/go-propagate/ontology"
	"github.com/nodeadmin/go-propagate/source"
)

func openSource(ctx context.Context, cfg *config.Config, location string) (io.ReadCloser, error) {
	return source.Open(ctx, location, source.Options{Timeout: time.Duration(cfg.FetchTimeout)})
}

// loadOntology reads cfg.OWL when set, otherwise cfg.OBO.
func loadOntology(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ontology.Ontology, error) {
	location, format := cfg.OBO, "obo"
	if cfg.OWL != "" {
		location, format = cfg.OWL, "owl"
	}
	return loadOntologyAs(ctx, cfg, log, location, format)
}

func loadOntologyAs(ctx context.Context, cfg *config.Config, log *zap.Logger, location, format string) (*ontology.Ontology, error) {
	r, err := openSource(ctx, cfg, location)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	start := time.Now()
	var o *ontology.Ontology
	switch format {
	case "obo":
		o, err = ontology.ParseOBO(r, ontology.WithLogger(log))
	case "owl":
		o, err = ontology.ParseOWL(r, ontology.WithLogger(log))
	default:
		return nil, fmt.Errorf("cannot detect format for %q, use --format obo or --format owl", location)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}
	log.Info("parsed ontology",
		zap.String("source", location),
		zap.Int("terms", o.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return o, nil
}

// populate attaches annotations from cfg.Annotations and cfg.GMT, then
// remaps gene ids through cfg.IDMap.
func populate(ctx context.Context, cfg *config.Config, o *ontology.Ontology) error {
	if cfg.Annotations != "" {
		r, err := openSource(ctx, cfg, cfg.Annotations)
		if err != nil {
			return err
		}
		err = o.PopulateAnnotations(r, cfg.Columns)
		r.Close()
		if err != nil {
			return fmt.Errorf("populate %s: %w", cfg.Annotations, err)
		}
	}
	if cfg.GMT != "" {
		r, err := openSource(ctx, cfg, cfg.GMT)
		if err != nil {
			return err
		}
		g, err := gmt.Read(r)
		r.Close()
		if err != nil {
			return fmt.Errorf("populate %s: %w", cfg.GMT, err)
		}
		o.PopulateFromGMT(g)
	}
	return nil
}

func remap(ctx context.Context, cfg *config.Config, o *ontology.Ontology) error {
	if cfg.IDMap == "" {
		return nil
	}
	r, err := openSource(ctx, cfg, cfg.IDMap)
	if err != nil {
		return err
	}
	m, err := idmap.Read(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("idmap %s: %w", cfg.IDMap, err)
	}
	o.MapGenes(m)
	return nil
}
