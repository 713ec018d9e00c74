package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/m-mizutani/clog"

	"yashubustudio/evtrisk/ortmodel"
	"yashubustudio/evtrisk/riskmodel"
)

type checkOptions struct {
	configPath   string
	manifestPath string
	printTable   bool
}

func main() {
	opts := parseFlags()
	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("riskmodel-check: %v", err)
	}
}

func parseFlags() checkOptions {
	var opts checkOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.manifestPath, "manifest", "", "Encoding manifest TOML (overrides manifestPath in config)")
	flag.BoolVar(&opts.printTable, "print-table", false, "Print the encoding table before checking the model")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.manifestPath = strings.TrimSpace(opts.manifestPath)
	return opts
}

func run(opts checkOptions, out io.Writer) error {
	cfg, err := riskmodel.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.manifestPath != "" {
		cfg.ManifestPath = opts.manifestPath
	}
	logger := slog.New(clog.New(clog.WithWriter(os.Stderr), clog.WithColor(false)))

	manifest, err := riskmodel.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	fmt.Fprintf(out, "manifest: %s (threshold %.2f)\n", manifest.Version, manifest.Threshold)
	if opts.printTable {
		printTable(out, manifest)
	}

	model := riskmodel.NewModelHandle(ortmodel.Loader(cfg.Classifier, manifest, logger))
	defer model.Close()
	if _, err := model.Classifier(); err != nil {
		return fmt.Errorf("open model %s: %w", cfg.Classifier.ModelPath, err)
	}

	form := riskmodel.NewForm(manifest)
	v, err := form.FeatureVector()
	if err != nil {
		return fmt.Errorf("encode default inputs: %w", err)
	}
	evaluator := riskmodel.NewEvaluator(model, manifest, logger)
	a, err := evaluator.Evaluate(context.Background(), v)
	if err != nil {
		return fmt.Errorf("evaluate default inputs: %w", err)
	}
	r := riskmodel.NewReport(a)
	fmt.Fprintf(out, "model: %s\n", a.ModelID)
	fmt.Fprintf(out, "default inputs: %v\n", v.Values())
	fmt.Fprintf(out, "probability: %s\n", r.Probability)
	fmt.Fprintf(out, "risk: %s (%s)\n", r.RiskLabel, r.ThresholdHint)
	return nil
}

func printTable(out io.Writer, m *riskmodel.Manifest) {
	table := m.Table()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "field\tlabel\tcode")
	for _, field := range riskmodel.CategoricalFields {
		for _, c := range table.Categories(field) {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", field, c.Label, c.Code)
		}
	}
	for _, field := range riskmodel.NumericFields {
		b := m.Bounds(field)
		fmt.Fprintf(tw, "%s\t[%.1f, %.1f] step %.1f\tdefault %.1f\n", field, b.Min, b.Max, b.Step, b.Default)
	}
	tw.Flush()
}
