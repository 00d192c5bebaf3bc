package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/google/pprof/profile"

	"github.com/sa4u-go/sa4u/internal/analysis"
	"github.com/sa4u-go/sa4u/internal/config"
	"github.com/sa4u-go/sa4u/internal/cxx"
	"github.com/sa4u-go/sa4u/internal/diagnostics"
	"github.com/sa4u-go/sa4u/internal/genconstraints"
	"github.com/sa4u-go/sa4u/internal/knowledge"
	"github.com/sa4u-go/sa4u/internal/phystype"
	"github.com/sa4u-go/sa4u/internal/smt"
	"github.com/sa4u-go/sa4u/internal/tu"
)

const workerArg = "__worker"

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// stringList collects a repeatable -i/--ignore-files flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type flags struct {
	compilationDatabase string
	messageDefinition    string
	flexModuleAPIURL     string
	priorTypes           string
	runAsDaemon          bool
	powerOfTen           bool
	disableScalars       bool
	serializeAnalysis    string
	ignoreFiles          stringList
	configPath           string
	cpuProfile           string
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == workerArg {
		if err := runWorkerCommand(); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("worker error:"), err)
			os.Exit(1)
		}
		return
	}

	f := parseFlags()

	if f.cpuProfile != "" {
		stop, err := startCPUProfile(f.cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
			os.Exit(1)
		}
		defer stop()
	}

	if err := applyConfigOverrides(f.configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}

	cfg, err := buildWorkerConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}

	runOnce := func() error { return runAnalysis(f, cfg) }

	if !f.runAsDaemon {
		if err := runOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%s listening for SIGHUP (re-run) / SIGTERM (exit)\n", yellow("daemon:"))
	d := analysis.NewDaemon(func() error {
		if err := runOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		}
		return nil
	})
	if err := d.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func parseFlags() flags {
	var f flags

	flag.StringVar(&f.compilationDatabase, "compilation-database", "", "Path to compile_commands.json")
	flag.StringVar(&f.compilationDatabase, "c", "", "Path to compile_commands.json (shorthand)")
	flag.StringVar(&f.messageDefinition, "message-definition", "", "Path to a MAVLink/CMASI message-definition XML file")
	flag.StringVar(&f.messageDefinition, "m", "", "Path to a message-definition file (shorthand)")
	flag.StringVar(&f.flexModuleAPIURL, "flex-module-api-url", "", "Base URL of a flex module LMCP HTTP API")
	flag.StringVar(&f.priorTypes, "prior-types", "", "Path to a prior-knowledge JSON file")
	flag.StringVar(&f.priorTypes, "p", "", "Path to a prior-knowledge JSON file (shorthand)")
	flag.BoolVar(&f.runAsDaemon, "run-as-daemon", false, "Stay resident and re-run on SIGHUP")
	flag.BoolVar(&f.runAsDaemon, "d", false, "Stay resident and re-run on SIGHUP (shorthand)")
	flag.BoolVar(&f.powerOfTen, "power-of-10", false, "Represent scalar prefixes as powers of ten instead of rationals")
	flag.BoolVar(&f.disableScalars, "disable-scalar-prefixes", false, "Ignore scalar prefixes entirely (unit exponents only)")
	flag.StringVar(&f.serializeAnalysis, "serialize-analysis", "", "Directory to cache/read per-translation-unit analysis results")
	flag.Var(&f.ignoreFiles, "ignore-files", "A file path to exclude from analysis (repeatable)")
	flag.Var(&f.ignoreFiles, "i", "A file path to exclude from analysis (shorthand, repeatable)")
	flag.StringVar(&f.configPath, "config", "", "YAML file extending the built-in ignore lists")
	flag.StringVar(&f.cpuProfile, "cpu-profile", "", "Write a pprof CPU profile to this path")

	flag.Parse()

	var missing []string
	if f.compilationDatabase == "" {
		missing = append(missing, "-c/--compilation-database")
	}
	if f.priorTypes == "" {
		missing = append(missing, "-p/--prior-types")
	}
	if len(missing) > 0 {
		rep := diagnostics.New(diagnostics.CLI001, fmt.Sprintf("missing required flag(s): %v", missing), nil)
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), rep.Message)
		flag.Usage()
		os.Exit(1)
	}
	if f.messageDefinition == "" && f.flexModuleAPIURL == "" {
		rep := diagnostics.New(diagnostics.CLI002, "one of -m/--message-definition or --flex-module-api-url is required", nil)
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), rep.Message)
		flag.Usage()
		os.Exit(1)
	}
	if f.messageDefinition != "" && f.flexModuleAPIURL != "" {
		rep := diagnostics.New(diagnostics.CLI002, "specify at most one of -m/--message-definition or --flex-module-api-url", nil)
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), rep.Message)
		os.Exit(1)
	}

	return f
}

func startCPUProfile(path string) (func(), error) {
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening cpu profile output: %w", err)
	}
	if err := pprof.StartCPUProfile(out); err != nil {
		out.Close()
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		out.Close()
		// Round-trip the written profile through google/pprof/profile so a
		// malformed profile (truncated write, mismatched sample counts)
		// surfaces immediately rather than silently producing an unreadable
		// file for `go tool pprof` later.
		if f, err := os.Open(path); err == nil {
			if _, err := profile.Parse(f); err != nil {
				fmt.Fprintf(os.Stderr, "%s cpu profile %s is malformed: %v\n", red("Error:"), path, err)
			}
			f.Close()
		}
	}, nil
}

func applyConfigOverrides(path string) error {
	if path == "" {
		return nil
	}
	overrides, err := config.Load(path)
	if err != nil {
		return err
	}
	genconstraints.AddIgnoredFuncs(overrides.IgnoreFuncs)
	genconstraints.AddIgnoredMembers(overrides.IgnoreMembers)
	genconstraints.AddIgnoredDirs(overrides.IgnoreDirs)
	return nil
}

func buildWorkerConfig(f flags) (tu.WorkerConfig, error) {
	priorFile, err := os.Open(f.priorTypes)
	if err != nil {
		return tu.WorkerConfig{}, fmt.Errorf("opening prior types file: %w", err)
	}
	defer priorFile.Close()
	priorTypes, err := knowledge.LoadPriorTypes(priorFile)
	if err != nil {
		return tu.WorkerConfig{}, err
	}

	var messages knowledge.LoadResult
	if f.messageDefinition != "" || f.flexModuleAPIURL != "" {
		location := f.messageDefinition
		if location == "" {
			location = f.flexModuleAPIURL
		}
		src := knowledge.SourceFromLocation(location)
		var errs []error
		messages, errs = knowledge.Load(context.Background(), src, func(p string) (io.ReadCloser, error) {
			return os.Open(p)
		})
		for _, e := range errs {
			diagnostics.Default.Log(diagnostics.New(diagnostics.KNW001, e.Error(), nil))
		}
	}

	home, _ := os.UserHomeDir()
	return tu.WorkerConfig{
		PriorTypes:            priorTypes,
		Messages:              messages,
		HomeDir:               home,
		PowerOfTen:            f.powerOfTen,
		DisableScalarPrefixes: f.disableScalars,
		SerializeDir:          f.serializeAnalysis,
	}, nil
}

func runAnalysis(f flags, cfg tu.WorkerConfig) error {
	db, err := cxx.LoadCompilationDatabase(f.compilationDatabase)
	if err != nil {
		return err
	}
	jobs, err := db.Commands()
	if err != nil {
		return err
	}
	jobs = filterIgnored(jobs, f.ignoreFiles)

	pool := tu.NewPool(0, workerArg)
	results := pool.Run(jobs, cfg)

	mode := phystype.Rational
	if f.powerOfTen {
		mode = phystype.PowerOfTen
	}
	global := smt.NewContext(smt.NewZ3Engine(), mode, !f.disableScalars)

	var assumptions []smt.Label
	for r := range results {
		if r.Err != nil {
			diagnostics.Default.Log(diagnostics.New(diagnostics.CACHE002, r.Err.Error(), nil))
			continue
		}
		labels, err := analysis.MergeTU(global, r.TU)
		if err != nil {
			diagnostics.Default.Log(diagnostics.New(diagnostics.CACHE002, err.Error(), nil))
			continue
		}
		assumptions = append(assumptions, labels...)
	}

	ok, err := analysis.Report(global, assumptions, os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("%s unit/frame contradictions found\n", red("FAIL:"))
		os.Exit(1)
	}
	fmt.Printf("%s no unit/frame contradictions found\n", green("PASS:"))
	return nil
}

func filterIgnored(jobs []cxx.CompileCommand, ignore []string) []cxx.CompileCommand {
	if len(ignore) == 0 {
		return jobs
	}
	skip := map[string]bool{}
	for _, f := range ignore {
		skip[f] = true
	}
	out := jobs[:0]
	for _, j := range jobs {
		if !skip[j.Filename] {
			out = append(out, j)
		}
	}
	return out
}

func runWorkerCommand() error {
	return tu.RunWorker(os.Stdin, os.Stdout, cxx.NewIndex(), smt.NewZ3Engine)
}
