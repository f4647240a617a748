// Package compiler is the host-facing entry point: it drives the strategy
// rewriter (C3), topology resolution (C6), and SQL generation (C4) over a
// host step pipeline, and classifies every lower-package failure into one of
// a handful of sentinel error kinds a host framework can branch on without
// importing this compiler's internal packages. Grounded on cayley's own
// `graph.Error`-style sentinel taxonomy (`graph/error.go`'s
// `ErrUnsupported`/`ErrNotEfficient` family) wrapped with `fmt.Errorf`, not a
// generic error-package hierarchy.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/gremlinsql/compiler/clog"
	"github.com/gremlinsql/compiler/dialect"
	"github.com/gremlinsql/compiler/sqlbuild"
	"github.com/gremlinsql/compiler/strategy"
	"github.com/gremlinsql/compiler/topology"
)

// Sentinel error kinds a host framework can test for with errors.Is,
// regardless of which internal package actually produced the failure.
var (
	// ErrUnrecognizedStep means the pipeline contained a step this compiler
	// has no folding or pass-through rule for. It is also returned when
	// nothing in the pipeline could be folded.
	ErrUnrecognizedStep = errors.New("compiler: unrecognized step")

	// ErrTopologyMiss means a label or navigation edge the pipeline
	// requires has no match in the topology catalog.
	ErrTopologyMiss = errors.New("compiler: topology miss")

	// ErrInvalidState means the compiler or emitter was asked to do
	// something its current lifecycle state forbids.
	ErrInvalidState = errors.New("compiler: invalid state")

	// ErrDialectRejection means SQL generation exceeded a hard dialect
	// limit (join count, identifier length) that splitting cannot work
	// around.
	ErrDialectRejection = errors.New("compiler: dialect rejected generated SQL")

	// ErrExecutionError means a lower layer failed for a reason unrelated
	// to compilation itself (e.g. the catalog's context was canceled).
	ErrExecutionError = errors.New("compiler: execution error")
)

// classify maps an internal package error to one of the sentinel kinds
// above, preserving the original error via %w so errors.Is still matches it
// too. Grounded on cayley's graph/sql error handling, which inspects driver
// errors (pq.Error/mysql.MySQLError/sqlite3.Error) to decide retry-ability;
// here the compiler's own package sentinels are matched first, and only
// then the dialect driver-error classifiers are consulted.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sqlbuild.ErrLabelNotFound):
		return fmt.Errorf("%w: %v", ErrTopologyMiss, err)
	case errors.Is(err, sqlbuild.ErrJoinLimitExceeded):
		return fmt.Errorf("%w: %v", ErrDialectRejection, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrExecutionError, err)
	case isDriverDialectRejection(err):
		return fmt.Errorf("%w: %v", ErrDialectRejection, err)
	default:
		return fmt.Errorf("%w: %v", ErrExecutionError, err)
	}
}

// isDriverDialectRejection consults every registered dialect's driver-error
// classifier (dialect.ClassifyPostgresError and friends) to decide whether
// err reflects a hard backend limit (too many joins, identifier too long)
// rather than a transient execution failure. Each classifier type-asserts
// err against its own driver's error type, so trying all four is safe
// regardless of which dialect actually produced it.
func isDriverDialectRejection(err error) bool {
	return dialect.ClassifyPostgresError(err) ||
		dialect.ClassifyCockroachError(err) ||
		dialect.ClassifyMySQLError(err) ||
		dialect.ClassifySQLiteError(err)
}

// ClassifyExecutionError maps an error returned by actually running Compile's
// generated SQL (a host framework's own job — this package never opens a
// connection, see sqlbuild.Result.MayQueryDuringBuild) into the same
// sentinel taxonomy classify uses for compile-time failures, so a host's
// execution layer gets the same ErrDialectRejection/ErrExecutionError split.
func ClassifyExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isDriverDialectRejection(err) {
		return fmt.Errorf("%w: %v", ErrDialectRejection, err)
	}
	return fmt.Errorf("%w: %v", ErrExecutionError, err)
}

// Options bundles everything Compile needs beyond the pipeline itself.
type Options struct {
	GraphID string
	Catalog topology.Catalog
	Build   sqlbuild.Options
}

// Plan is the outcome of a successful Compile: the folded pipeline (for
// diagnostics — see cmd/gremlinsqlctl's `compile` sub-command), the
// resolved SchemaTableTrees, and the generated SQL.
type Plan struct {
	Pipeline *strategy.Pipeline
	Trees    []*sqlbuild.SchemaTableTree
	Result   *sqlbuild.Result
}

// Compile runs the full pushdown pipeline over a host step list: strategy
// rewriting, topology resolution, and SQL generation. It does not execute
// anything — building never touches the database (see sqlbuild's
// MayQueryDuringBuild, always false).
func Compile(ctx context.Context, steps []strategy.Step, opts Options) (*Plan, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("%w: no topology catalog configured", ErrInvalidState)
	}

	p := strategy.NewPipeline(steps...)
	folded, err := strategy.InstallStrategies(p, opts.GraphID)
	if err != nil {
		return nil, classify(err)
	}
	if !folded {
		return nil, fmt.Errorf("%w: pipeline has nothing foldable for graph %q", ErrUnrecognizedStep, opts.GraphID)
	}

	source := p.At(0)
	if source.Kind != strategy.KindCompiledSource || source.Compiled == nil {
		return nil, fmt.Errorf("%w: rewriter folded but produced no compiled source", ErrInvalidState)
	}
	tree := source.Compiled.GetReplacedStepTree()

	clog.Infof("compiler: resolving replaced-step tree (%d nodes) against topology", tree.Len())
	trees, err := sqlbuild.Resolve(ctx, tree, opts.Catalog, opts.Build.IgnoreLabelOptimization)
	if err != nil {
		return nil, classify(err)
	}

	result, err := sqlbuild.Build(trees, opts.Build)
	if err != nil {
		return nil, classify(err)
	}
	if result.IsForMultipleQueries {
		clog.Warningf("compiler: plan split into %d statements", len(result.Statements))
	}

	return &Plan{Pipeline: p, Trees: trees, Result: result}, nil
}
