// Command pdbgraph converts PDB structures into weighted atomic proximity
// edge lists.
//
//	pdbgraph [-s 2.5] [-type atomic|residue] [flags] <file.pdb>...
//
// Each input is written next to itself as <stem>.<scaling>.dat, or
// <stem>.residue.<scaling>.dat for residue edge lists.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-pdbgraph/pkg/config"
	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
	"github.com/dd0wney/cluso-pdbgraph/pkg/convert"
	"github.com/dd0wney/cluso-pdbgraph/pkg/logging"
	"github.com/dd0wney/cluso-pdbgraph/pkg/metrics"
	"github.com/dd0wney/cluso-pdbgraph/pkg/parallel"
	"github.com/dd0wney/cluso-pdbgraph/pkg/publish"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// scaleValue is a float32 flag.
type scaleValue struct{ v *float32 }

func (s scaleValue) String() string {
	if s.v == nil {
		return ""
	}
	return contact.FormatScale(*s.v)
}

func (s scaleValue) Set(raw string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
	if err != nil {
		return err
	}
	*s.v = float32(f)
	return nil
}

type options struct {
	configPath string
	cfg        config.Config
	inputs     []string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("pdbgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pdbgraph [flags] <file.pdb>...")
		fs.PrintDefaults()
	}

	f := &opts.cfg
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&f.Type, "type", "", "edge list type: atomic or residue (default atomic)")
	fs.Var(scaleValue{&f.Scaling}, "s", "cutoff scaling factor (default 2.5)")
	fs.Var(scaleValue{&f.Scaling}, "scaling", "cutoff scaling factor (default 2.5)")
	fs.IntVar(&f.Workers, "workers", 0, "worker goroutines for the graph build (0 or 1: sequential)")
	fs.IntVar(&f.Jobs, "jobs", 1, "input files converted concurrently")
	fs.BoolVar(&f.Lenient, "lenient", false, "skip malformed ATOM records instead of failing")
	fs.BoolVar(&f.ExcludeHydrogens, "no-hydrogens", false, "drop hydrogen atoms before numbering")
	fs.StringVar(&f.Chain, "chain", "", "keep only atoms of this chain")
	fs.BoolVar(&f.Compress, "compress", false, "write snappy compressed edge lists (.dat.sz)")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	fs.StringVar(&f.S3.Bucket, "s3-bucket", "", "upload edge lists to this bucket")
	fs.StringVar(&f.S3.Prefix, "s3-prefix", "", "object key prefix for uploads")
	fs.StringVar(&f.S3.AccessKey, "s3-access-key", "", "static S3 access key (with -s3-secret-key)")
	fs.StringVar(&f.S3.SecretKey, "s3-secret-key", "", "static S3 secret key (with -s3-access-key)")
	fs.StringVar(&f.Postgres.URL, "pg-url", "", "deposit edge lists in this PostgreSQL database")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.inputs = fs.Args()
	if len(opts.inputs) == 0 {
		fs.Usage()
		return nil, errors.New("no input files")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	// Flags given on the command line win over the file and environment
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "type":
			cfg.Type = strings.ToLower(strings.TrimSpace(f.Type))
		case "s", "scaling":
			cfg.Scaling = f.Scaling
		case "workers":
			cfg.Workers = f.Workers
		case "jobs":
			cfg.Jobs = f.Jobs
		case "lenient":
			cfg.Lenient = f.Lenient
		case "no-hydrogens":
			cfg.ExcludeHydrogens = f.ExcludeHydrogens
		case "chain":
			cfg.Chain = f.Chain
		case "compress":
			cfg.Compress = f.Compress
		case "log-level":
			cfg.LogLevel = strings.ToLower(f.LogLevel)
		case "metrics-file":
			cfg.MetricsFile = f.MetricsFile
		case "s3-bucket":
			cfg.S3.Bucket = f.S3.Bucket
		case "s3-prefix":
			cfg.S3.Prefix = f.S3.Prefix
		case "s3-access-key":
			cfg.S3.AccessKey = f.S3.AccessKey
		case "s3-secret-key":
			cfg.S3.SecretKey = f.S3.SecretKey
		case "pg-url":
			cfg.Postgres.URL = f.Postgres.URL
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.cfg = *cfg
	return opts, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "pdbgraph: %v\n", err)
		return 1
	}
	cfg := &opts.cfg

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(cfg.LogLevel)).With(logging.Component("pdbgraph"))
	reg := metrics.NewRegistry()

	if err := convertAll(ctx, cfg, opts.inputs, reg, logger); err != nil {
		logger.Error("run failed", logging.Error(err))
		writeMetrics(cfg, reg, logger)
		return 1
	}
	writeMetrics(cfg, reg, logger)
	return 0
}

func convertAll(ctx context.Context, cfg *config.Config, inputs []string, reg *metrics.Registry, logger logging.Logger) error {
	var pool *parallel.WorkerPool
	if cfg.Parallel() {
		p, err := parallel.NewWorkerPool(cfg.Workers, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
	}

	conv, err := convert.New(convert.Options{
		Type:             contact.Type(cfg.Type),
		Scale:            cfg.Scaling,
		Lenient:          cfg.Lenient,
		Chain:            cfg.Chain,
		ExcludeHydrogens: cfg.ExcludeHydrogens,
		Compress:         cfg.Compress,
		Pool:             pool,
		Logger:           logger,
		Metrics:          reg,
	})
	if err != nil {
		return err
	}

	outputs, err := outputPaths(inputs, conv)
	if err != nil {
		return err
	}

	pubs, closeAll, err := publishers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	errs := make([]error, len(inputs))
	var g errgroup.Group
	g.SetLimit(cfg.Jobs)
	for i, input := range inputs {
		g.Go(func() error {
			errs[i] = convertFile(ctx, conv, input, outputs[i], pubs, reg, logger)
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

// outputPaths maps each input to its edge list path. Two inputs that would
// write the same file fail the whole batch before anything is converted.
func outputPaths(inputs []string, conv *convert.Converter) ([]string, error) {
	outputs := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		out := OutputPath(input, conv.Type(), conv.Scale(), conv.Compressed())
		key := filepath.Clean(out)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", errDuplicateOutput, prev, input, out)
		}
		seen[key] = input
		outputs[i] = out
	}
	return outputs, nil
}

var errDuplicateOutput = errors.New("duplicate output path")

func publishers(ctx context.Context, cfg *config.Config) ([]publish.Publisher, func(), error) {
	var pubs []publish.Publisher
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.S3.Bucket != "" {
		u, err := publish.NewS3Uploader(ctx, publish.S3Options{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		pubs = append(pubs, u)
	}

	if cfg.Postgres.URL != "" {
		store, err := publish.NewPGStore(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { store.Close() })
		pubs = append(pubs, store)
	}

	return pubs, closeAll, nil
}

// outputMode is applied to finished edge lists; CreateTemp opens files 0600.
const outputMode os.FileMode = 0o644

// convertFile writes input's edge list to outPath. Output goes to a temporary
// file that is renamed into place only after a successful conversion.
func convertFile(ctx context.Context, conv *convert.Converter, input, outPath string, pubs []publish.Publisher, reg *metrics.Registry, logger logging.Logger) error {
	logger = logger.With(logging.Path(input))

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	res, err := conv.Convert(ctx, in, tmp)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := tmp.Chmod(outputMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	committed = true

	logger.Info("wrote edge list",
		logging.String("output", outPath),
		logging.Atoms(res.Graph.Atoms),
		logging.Edges(res.Graph.Edges),
	)

	if len(pubs) == 0 {
		return nil
	}
	return publish.All(ctx, &publish.Artifact{
		PDBRef:         PDBRef(input),
		Type:           conv.Type(),
		HydrogenStatus: conv.HydrogenStatus(),
		Scaling:        conv.Scale(),
		Path:           outPath,
		Compressed:     conv.Compressed(),
		Edges:          res.Edges,
	}, reg, logger, pubs...)
}

func writeMetrics(cfg *config.Config, reg *metrics.Registry, logger logging.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := reg.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics", logging.Error(err))
	}
}

// structureExts are stripped from input names before the scaling suffix is
// appended.
var structureExts = []string{".pdb", ".ent"}

// stem returns path without a trailing structure extension.
func stem(path string) string {
	ext := filepath.Ext(path)
	for _, e := range structureExts {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

// OutputPath is <stem>.<scaling>.dat, or .dat.sz when compressed. Residue
// edge lists insert the type: <stem>.residue.<scaling>.dat.
func OutputPath(input string, t contact.Type, scale float32, compressed bool) string {
	out := stem(input) + "."
	if t == contact.Residue {
		out += string(contact.Residue) + "."
	}
	out += contact.FormatScale(scale) + ".dat"
	if compressed {
		out += ".sz"
	}
	return out
}

// PDBRef is the lower-cased file stem, the key used for stored edge lists.
func PDBRef(input string) string {
	return strings.ToLower(filepath.Base(stem(input)))
}
