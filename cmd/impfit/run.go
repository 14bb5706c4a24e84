package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/impfit/circuit"
	"github.com/arloliu/impfit/config"
	"github.com/arloliu/impfit/dataset"
	"github.com/arloliu/impfit/ensemble"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/results"
	"github.com/arloliu/impfit/runner"
	"github.com/arloliu/impfit/solver"
)

// runFlags are the command-line overrides of the run configuration.
type runFlags struct {
	solver      string
	circuit     string
	class       string
	protocol    string
	params      string
	data        string
	output      string
	compression string
	noWrite     bool
	cluster     float64
	sigma       int

	circuit2    string
	class2      string
	params2     string
	communicate []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.solver, "solver", "", "Solver: "+fmt.Sprint(solver.Names()))
	fl.StringVar(&f.circuit, "model", "", "Circuit expression, e.g. \"R + ColeCole\"")
	fl.StringVar(&f.class, "class", "", "Model class for the iterative protocol")
	fl.StringVar(&f.protocol, "protocol", "", "Fitting protocol: iterative or none")
	fl.StringVar(&f.params, "params", "", "Parameter file")
	fl.StringVar(&f.data, "data", "", "Data directory")
	fl.StringVarP(&f.output, "output", "o", "", "Results file")
	fl.StringVar(&f.compression, "compression", "", "Results compression: none, zstd, s2, lz4")
	fl.BoolVar(&f.noWrite, "no-write", false, "Do not write a results file")
	fl.Float64Var(&f.cluster, "cluster", 0, "Cluster ensemble walkers with this constant before computing intervals")
	fl.IntVar(&f.sigma, "sigma", 0, "Print confidence intervals at this sigma (1-3) for the last record")
}

func (f *runFlags) registerSequential(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.circuit2, "model2", "", "Circuit expression of the second model")
	fl.StringVar(&f.class2, "class2", "", "Model class of the second model")
	fl.StringVar(&f.params2, "params2", "", "Parameter file of the second model")
	fl.StringSliceVar(&f.communicate, "communicate", nil, "Names handed from model 1 to model 2, e.g. k,e")
}

// apply copies every set flag into cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("solver", &cfg.Solver.Name, f.solver)
	set("model", &cfg.Model.Circuit, f.circuit)
	set("class", &cfg.Model.Class, f.class)
	set("protocol", &cfg.Model.Protocol, f.protocol)
	set("data", &cfg.Data.Directory, f.data)
	set("output", &cfg.Output.Path, f.output)
	set("compression", &cfg.Output.Compression, f.compression)
	if cmd.Flags().Changed("params") {
		cfg.Parameters = config.Params{File: f.params}
	}
	if f.noWrite {
		cfg.Output.Write = false
	}
	if cmd.Flags().Changed("cluster") {
		cfg.Clustering = config.ClusteringConfig{Enabled: f.cluster > 0, Constant: f.cluster}
	}

	if cmd.Flags().Lookup("model2") == nil {
		return
	}
	if cfg.Sequential == nil {
		cfg.Sequential = &config.SequentialConfig{}
	}
	set("model2", &cfg.Sequential.Model2.Circuit, f.circuit2)
	set("class2", &cfg.Sequential.Model2.Class, f.class2)
	if cmd.Flags().Changed("params2") {
		cfg.Parameters2 = config.Params{File: f.params2}
	}
	if cmd.Flags().Changed("communicate") {
		cfg.Sequential.Communicate = f.communicate
	}
	cfg.Sequential.Model2.Protocol = cfg.Model.Protocol
}

func newFitCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit one model to every spectrum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)
			a.cfg.Sequential = nil

			return a.run(cmd, f.sigma)
		},
	}
	f.register(cmd)

	return cmd
}

func newSequentialCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "sequential",
		Short: "Fit two models per spectrum, handing fitted values from the first to the second",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)

			return a.run(cmd, f.sigma)
		},
	}
	f.register(cmd)
	f.registerSequential(cmd)

	return cmd
}

func newCICmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "ci",
		Short: "Fit and print confidence intervals for the last spectrum",
		Long: `ci runs the configured single-model fit without writing results and prints
the confidence intervals of the last spectrum. Ensemble results use the
percentile intervals of the chain, least-squares results profile intervals.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)
			a.cfg.Sequential = nil
			a.cfg.Output.Write = false
			if f.sigma == 0 {
				f.sigma = 1
			}

			return a.run(cmd, f.sigma)
		},
	}
	f.register(cmd)

	return cmd
}

// run executes the configured run and optionally prints intervals.
func (a *app) run(cmd *cobra.Command, sigma int) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if sigma < 0 || sigma > 3 {
		return fmt.Errorf("--sigma must be between 1 and 3")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	consts, err := cfg.ResolveConstants()
	if err != nil {
		return err
	}
	spec1, err := a.modelSpec("model1", cfg.Model, cfg.Parameters, consts)
	if err != nil {
		return err
	}

	ds, err := a.loadData(ctx)
	if err != nil {
		return err
	}

	opts := []runner.Option{runner.WithLogger(a.logger), runner.WithChainReports()}
	if cfg.Output.Write {
		ct, err := cfg.OutputCompression()
		if err != nil {
			return err
		}
		w, err := results.NewWriter(cfg.OutputPath(), results.WithCompression(ct), results.WithLogger(a.logger))
		if err != nil {
			return err
		}
		opts = append(opts, runner.WithWriter(w))
	}
	r, err := runner.New(opts...)
	if err != nil {
		return err
	}

	var sum *runner.Summary
	spec := spec1
	if cfg.Sequential != nil {
		spec2, err := a.modelSpec("model2", cfg.Sequential.Model2, cfg.Parameters2, consts)
		if err != nil {
			return err
		}
		sum, err = r.RunSequential(ctx, ds, spec1, spec2, cfg.Sequential.Communicate)
		if err != nil {
			return err
		}
		spec = spec2
	} else {
		sum, err = r.Run(ctx, ds, spec1)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d records\n", sum.Processed)
	if sum.Processed > 0 && cfg.Output.Write {
		fmt.Fprintf(cmd.OutOrStdout(), "results written to %s\n", cfg.OutputPath())
	}
	if sigma == 0 || sum.Last == nil {
		return nil
	}

	return a.printIntervals(ctx, cmd, spec, sum, sigma)
}

func (a *app) modelSpec(name string, mc config.ModelConfig, params config.Params, consts circuit.Constants) (runner.ModelSpec, error) {
	m, err := circuit.Parse(mc.Circuit, consts)
	if err != nil {
		return runner.ModelSpec{}, fmt.Errorf("%s: %w", name, err)
	}
	if params.IsZero() {
		return runner.ModelSpec{}, fmt.Errorf("%s: no parameters configured for %s", name, m)
	}
	set, err := params.Set(a.cfg.BaseDir())
	if err != nil {
		return runner.ModelSpec{}, fmt.Errorf("%s: %w", name, err)
	}
	for _, p := range m.ParamNames() {
		if !set.Has(p) {
			return runner.ModelSpec{}, fmt.Errorf("%s: parameter %s of %s is not configured", name, p, m)
		}
	}

	sol, err := solver.New(a.cfg.Solver.Name, append(a.cfg.Solver.Options(), solver.WithLogger(a.logger))...)
	if err != nil {
		return runner.ModelSpec{}, err
	}

	return runner.ModelSpec{
		Name:      name,
		Class:     mc.Class,
		Staged:    mc.Iterative(),
		Evaluator: m.Evaluator(),
		Logscale:  mc.Logscale,
		Params:    set,
		Solver:    sol,
	}, nil
}

func (a *app) loadData(ctx context.Context) (*dataset.Dataset, error) {
	dc := a.cfg.Data
	l, err := dataset.NewLoader(dc.Directory,
		dataset.WithFiles(dc.Files...),
		dataset.WithExcludeEnding(dc.ExcludeEnding),
		dataset.WithFrequencyWindow(dc.MinFrequency, dc.MaxFrequency),
		dataset.WithLimit(dc.DataSets),
		dataset.WithLoaderLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	return l.Load(ctx)
}

func (a *app) estimator(problem fit.Problem) (*ensemble.Estimator, error) {
	profiler, err := solver.NewProfiler(problem, append(a.cfg.Solver.Options(), solver.WithLogger(a.logger))...)
	if err != nil {
		return nil, err
	}
	opts := []ensemble.Option{ensemble.WithLogger(a.logger), ensemble.WithNative(profiler)}
	if a.cfg.Clustering.Enabled {
		opts = append(opts, ensemble.WithClustering(a.cfg.Clustering.Constant))
	}

	return ensemble.NewEstimator(opts...)
}

func (a *app) printIntervals(ctx context.Context, cmd *cobra.Command, spec runner.ModelSpec, sum *runner.Summary, sigma int) error {
	res := sum.Last
	est, err := a.estimator(spec.Problem(sum.LastRecord, res.Params))
	if err != nil {
		return err
	}
	ci, err := est.Estimate(ctx, res)
	if err != nil {
		return err
	}
	a.logger.Debug("confidence intervals computed", zap.String("record", sum.LastRecord.ID()), zap.Int("params", len(ci)))

	return writeIntervals(cmd.OutOrStdout(), sum.LastRecord.ID(), res, ci, sigma)
}
