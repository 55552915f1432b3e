package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/config"
	"github.com/nodeadmin/go-propagate/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logMode    string
	logLevel   string
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "goprop",
		Short:         "Parse Gene Ontology files and propagate gene annotations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML or TOML configuration file")
	root.PersistentFlags().StringVar(&g.logMode, "log-mode", "", "log mode: dev or prod")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 0, "timeout for remote downloads")

	root.AddCommand(newJSONCmd(g))
	root.AddCommand(newPropagateCmd(g))
	root.AddCommand(newTermsCmd(g))
	root.AddCommand(newAncestorsCmd(g))
	root.AddCommand(newDescendantsCmd(g))
	root.AddCommand(newLeavesCmd(g))
	root.AddCommand(newXrefsCmd(g))
	root.AddCommand(newClosureExportCmd(g))
	return root
}

// resolve loads the config file if any and layers flag values over it.
func (g *globalFlags) resolve(flags *config.Config) (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		fileCfg, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if flags == nil {
		flags = &config.Config{}
	}
	flags.Log.Mode = g.logMode
	flags.Log.Level = g.logLevel
	flags.FetchTimeout = config.Duration(g.timeout)
	cfg.Merge(flags)
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Mode, cfg.Log.Level)
}

// detectFormat picks obo or owl from the file extension, ignoring a
// trailing compression suffix.
func detectFormat(path, explicit string) string {
	if explicit != "" && explicit != "auto" {
		return explicit
	}
	p := strings.ToLower(path)
	for _, suffix := range []string{".gz", ".zst", ".zstd"} {
		p = strings.TrimSuffix(p, suffix)
	}
	switch filepath.Ext(p) {
	case ".obo":
		return "obo"
	case ".owl", ".xml", ".rdf":
		return "owl"
	}
	return ""
}
