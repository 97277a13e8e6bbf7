// Package cases expands a base deck into a batch of variant decks driven
// by a YAML case matrix. Every generated deck is validated before it is
// written; decks with validation errors are reported and skipped.
package cases

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/windtools/fstdeck/internal/deck"
	"github.com/windtools/fstdeck/internal/log"
	"github.com/windtools/fstdeck/internal/metrics"
)

// Matrix is a parsed case matrix: shared defaults applied to every case,
// then per-case overrides on top.
type Matrix struct {
	Defaults map[string]any            `yaml:"defaults"`
	Cases    map[string]map[string]any `yaml:"cases"`
}

// Case names become part of output file names, so they are restricted to a
// filesystem-safe alphabet.
var caseNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// LoadMatrix reads and validates a case matrix file. Unknown top-level keys
// are rejected so typos surface here, not as silently missing overrides.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied matrix path
	if err != nil {
		return nil, fmt.Errorf("read case matrix: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Matrix
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse case matrix %s: %w", path, err)
	}
	if len(m.Cases) == 0 {
		return nil, fmt.Errorf("case matrix %s: no cases defined", path)
	}
	for name := range m.Cases {
		if !caseNameRe.MatchString(name) {
			return nil, fmt.Errorf("case matrix %s: invalid case name %q", path, name)
		}
	}
	return &m, nil
}

// Result records the outcome of one generated case.
type Result struct {
	Case   string
	Path   string
	Issues []deck.Issue
	Err    error
}

// Options configure a batch generation run.
type Options struct {
	OutDir   string // defaults to the base deck's directory
	Parallel int    // max concurrent cases, defaults to 4
}

// Generate expands the base deck into one deck per matrix case, written as
// <base>_<case>.fst. Cases are generated in parallel; results come back in
// case name order, one entry per case, with failures recorded per case
// rather than aborting the batch.
func Generate(ctx context.Context, basePath string, m *Matrix, opts Options) ([]Result, error) {
	base, err := deck.ParseFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("base deck: %w", err)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(basePath)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = 4
	}

	stem := strings.TrimSuffix(filepath.Base(basePath), filepath.Ext(basePath))

	names := make([]string, 0, len(m.Cases))
	for name := range m.Cases {
		names = append(names, name)
	}
	sort.Strings(names)

	logger := log.WithComponent("cases")
	results := make([]Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Case: name, Err: err}
				return nil
			}
			results[i] = generateOne(base, m, name, outDir, stem, logger)
			return nil
		})
	}
	// Workers never return errors; per-case failures land in results.
	_ = g.Wait()

	return results, nil
}

func generateOne(base *deck.Document, m *Matrix, name, outDir, stem string, logger zerolog.Logger) Result {
	res := Result{
		Case: name,
		Path: filepath.Join(outDir, stem+"_"+name+".fst"),
	}

	doc := base.Clone()
	if err := doc.Apply(m.Defaults); err != nil {
		res.Err = fmt.Errorf("case %s: defaults: %w", name, err)
		metrics.IncCaseGenerated("failure")
		return res
	}
	if err := doc.Apply(m.Cases[name]); err != nil {
		res.Err = fmt.Errorf("case %s: %w", name, err)
		metrics.IncCaseGenerated("failure")
		return res
	}

	res.Issues = deck.Validate(doc)
	if errs := deck.Errors(res.Issues); len(errs) > 0 {
		res.Err = fmt.Errorf("case %s: %d validation errors, deck not written", name, len(errs))
		metrics.IncCaseGenerated("failure")
		logger.Warn().
			Str("event", "cases.validation_failed").
			Str("case", name).
			Int("errors", len(errs)).
			Msg("generated deck failed validation")
		return res
	}

	if err := doc.WriteFile(res.Path); err != nil {
		res.Err = fmt.Errorf("case %s: %w", name, err)
		metrics.IncDeckWriteError()
		metrics.IncCaseGenerated("failure")
		return res
	}
	metrics.IncDeckWritten()
	metrics.IncCaseGenerated("success")

	logger.Info().
		Str("event", "cases.generated").
		Str("case", name).
		Str("path", res.Path).
		Int("issues", len(res.Issues)).
		Msg("case deck written")
	return res
}
