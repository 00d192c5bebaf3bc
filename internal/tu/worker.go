package tu

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sa4u-go/sa4u/internal/cxx"
	"github.com/sa4u-go/sa4u/internal/diagnostics"
	"github.com/sa4u-go/sa4u/internal/genconstraints"
	"github.com/sa4u-go/sa4u/internal/phystype"
	"github.com/sa4u-go/sa4u/internal/smt"
	"github.com/sa4u-go/sa4u/internal/srcloc"
)

// GetIgnoreLines scans a translation unit's raw source for a recognized
// ignore-marker comment ("sa4u:ignore") and returns the position of every
// line carrying one. The reference implementation's get_ignore_lines body
// was not present in the retrieved sources; this follows the shape its call
// site implies (a per-TU list of locations the walker skips), scanning the
// source text directly rather than walking comment tokens since libclang
// does not expose comments as cursors by default.
func GetIgnoreLines(path string) []srcloc.Pos {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []srcloc.Pos
	for i, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "sa4u:ignore") {
			out = append(out, srcloc.Pos{File: path, Line: i + 1})
		}
	}
	return out
}

// EngineFactory builds one fresh smt.Engine, used to give every translation
// unit its own independent solver, matching the reference implementation's
// per-TU `tu_solver = Solver()`.
type EngineFactory func() smt.Engine

// RunWorker is the body of the "sa4u __worker" subcommand: it reads a
// WorkerConfig and a stream of compile commands from in, parses and walks
// each one in turn, and writes one result envelope per job to out as NDJSON,
// followed by a literal null line, mirroring child_walkers running inside
// its own multiprocessing.Process.
func RunWorker(in io.Reader, out io.Writer, index cxx.Index, newEngine EngineFactory) error {
	cfg, jobs, err := readConfigAndJobs(in)
	if err != nil {
		return err
	}

	mode := phystype.Rational
	if cfg.PowerOfTen {
		mode = phystype.PowerOfTen
	}

	var cache *Cache
	if cfg.SerializeDir != "" {
		cache = NewCache(cfg.SerializeDir)
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	enc := json.NewEncoder(w)

	for _, job := range jobs {
		stu, fromCache, err := processJob(job, index, newEngine, mode, cfg, cache)
		if err != nil {
			_ = enc.Encode(resultEnvelope{Error: err.Error()})
			continue
		}
		if cache != nil && !fromCache {
			if err := cache.Put(stu); err != nil {
				_ = enc.Encode(resultEnvelope{Error: fmt.Sprintf("caching %s: %v", job.Filename, err)})
				continue
			}
		}
		_ = enc.Encode(resultEnvelope{TU: stu})
	}
	return enc.Encode(nil)
}

// processJob returns a job's SerializedTU, either reused verbatim from cache
// (fromCache == true, mirroring get_stored_stu's early return) or freshly
// parsed and walked. A cache hit skips ParseTranslationUnit entirely, not
// just the constraint walk, matching the reference driver's behavior of
// never re-invoking clang on an unchanged file.
func processJob(job cxx.CompileCommand, index cxx.Index, newEngine EngineFactory, mode phystype.Mode, cfg WorkerConfig, cache *Cache) (*SerializedTU, bool, error) {
	fullPath := filepath.Join(job.Directory, job.Filename)
	if cache != nil {
		if stu, ok := cache.Get(fullPath); ok {
			return stu, true, nil
		}
	}

	root, err := index.ParseTranslationUnit(job)
	if err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", job.Filename, err)
	}

	log := diagnostics.NewLogger(os.Stderr)
	engine := newEngine()
	ctx := smt.NewContext(engine, mode, !cfg.DisableScalarPrefixes)
	walker := genconstraints.NewWalker(ctx, log, cfg.HomeDir)

	for _, pt := range cfg.PriorTypes {
		walker.SeedPriorType(pt)
	}
	walker.SeedMessageTypes(cfg.Messages)

	walker.Walk(root, GetIgnoreLines(fullPath))

	assertions := make([]string, len(walker.Labels))
	for i, l := range walker.Labels {
		assertions[i] = string(l)
	}

	return &SerializedTU{
		SerializationTime: Now(),
		Assertions:        assertions,
		Solver:            engine.ToSMTLIB(),
		Spelling:          fullPath,
	}, false, nil
}
