package digest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/neurobagel/digest/bagel"
	"github.com/neurobagel/digest/internal/aggregate"
	"github.com/neurobagel/digest/internal/config"
	"github.com/neurobagel/digest/internal/schema"
	"github.com/neurobagel/digest/internal/tabular"
	"github.com/neurobagel/digest/internal/types"
	"github.com/neurobagel/digest/internal/util"
	"github.com/neurobagel/digest/internal/validate"
	"github.com/neurobagel/digest/pkg/version"
)

// UnrecognizedPolicy controls how table headers that match no schema
// column are handled during validation.
type UnrecognizedPolicy = validate.UnrecognizedPolicy

const (
	// UnrecognizedIgnore silently skips unrecognized headers.
	UnrecognizedIgnore = validate.UnrecognizedIgnore

	// UnrecognizedWarn logs each unrecognized header and keeps going.
	UnrecognizedWarn = validate.UnrecognizedWarn

	// UnrecognizedReject reports unrecognized headers as violations.
	UnrecognizedReject = validate.UnrecognizedReject
)

// Sentinel errors for errors.Is checks. Errors returned by this package
// carry context-specific messages; identity is by error code.
var (
	ErrSchemaNotFound   = types.NewError(types.SCHEMA_NOT_FOUND, "schema flavor is not registered")
	ErrSchemaParse      = types.NewError(types.SCHEMA_PARSE_FAILED, "schema definition is malformed")
	ErrTableParse       = types.NewError(types.TABLE_PARSE_FAILED, "digest table could not be read")
	ErrConfigLoad       = types.NewError(types.CONFIG_LOAD_FAILED, "configuration could not be loaded")
	ErrConfigValidation = types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is invalid")
)

// Digest validates digest tables against registered schema flavors.
// Instances are safe for concurrent use: the flavor registry is read-only
// after construction and every validation run operates on its own state.
type Digest struct {
	registry *schema.Registry
	logger   *slog.Logger

	// Configuration options
	policy     UnrecognizedPolicy
	schemaDir  string
	maxRows    int
	maxColumns int
}

// Option is a functional option for configuring a Digest.
type Option func(*Digest)

// WithLogger sets the logger used by the instance and its validation runs.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(d *Digest) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSchemaDir registers every JSON schema definition found in dir
// alongside the builtin flavors. Files are registered under their base
// name, so collisions override the builtin definition. The directory may
// use a leading ~ and environment variable references.
func WithSchemaDir(dir string) Option {
	return func(d *Digest) {
		d.schemaDir = dir
	}
}

// WithUnrecognizedColumnPolicy sets the handling of headers that match no
// schema column.
// Default: UnrecognizedWarn
func WithUnrecognizedColumnPolicy(policy UnrecognizedPolicy) Option {
	return func(d *Digest) {
		if policy.IsValid() {
			d.policy = policy
		}
	}
}

// WithTableLimits bounds accepted tables by data rows and columns.
// Zero disables the corresponding limit.
// Default: 1000000 rows, 10000 columns
func WithTableLimits(maxRows, maxColumns int) Option {
	return func(d *Digest) {
		if maxRows >= 0 {
			d.maxRows = maxRows
		}
		if maxColumns >= 0 {
			d.maxColumns = maxColumns
		}
	}
}

// New creates a Digest with the builtin flavors and the given options.
func New(options ...Option) (*Digest, error) {
	defaults := config.DefaultConfig()
	d := &Digest{
		logger:     slog.Default(),
		policy:     UnrecognizedPolicy(defaults.Validation.UnrecognizedColumns),
		maxRows:    defaults.Ingest.MaxRows,
		maxColumns: defaults.Ingest.MaxColumns,
	}
	for _, opt := range options {
		opt(d)
	}

	registry, err := schema.NewRegistry(d.logger)
	if err != nil {
		return nil, err
	}
	if d.schemaDir != "" {
		dir, err := util.ExpandPath(d.schemaDir)
		if err != nil {
			return nil, err
		}
		if err := registry.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	d.registry = registry

	d.logger.Debug("digest library initialized",
		"version", version.Version,
		"flavors", registry.Flavors())
	return d, nil
}

// NewFromConfigFile creates a Digest configured from a YAML file. A
// missing file yields the defaults. The instance logs to stderr at the
// configured level and format.
func NewFromConfigFile(path string) (*Digest, error) {
	loader := config.NewConfigLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}

	options := []Option{
		WithLogger(cfg.Logging.NewLogger(os.Stderr)),
		WithUnrecognizedColumnPolicy(UnrecognizedPolicy(cfg.Validation.UnrecognizedColumns)),
		WithTableLimits(cfg.Ingest.MaxRows, cfg.Ingest.MaxColumns),
	}
	if cfg.Schemas.Dir != "" {
		options = append(options, WithSchemaDir(cfg.Schemas.Dir))
	}
	return New(options...)
}

// Flavors lists the registered schema flavors in sorted order.
func (d *Digest) Flavors() []string {
	return d.registry.Flavors()
}

// Schema returns a handle on the given flavor, or ErrSchemaNotFound when
// no such flavor is registered.
func (d *Digest) Schema(flavor bagel.Flavor) (*Schema, error) {
	sch, err := d.registry.Load(flavor.String())
	if err != nil {
		return nil, err
	}
	return &Schema{digest: d, schema: sch}, nil
}

// ValidateAll validates one table per flavor concurrently. It fails fast
// on the first structural error; schema violations are not errors and are
// reported inside each flavor's result.
func (d *Digest) ValidateAll(ctx context.Context, inputs map[bagel.Flavor]io.Reader) (map[bagel.Flavor]*bagel.Result, error) {
	var mu sync.Mutex
	results := make(map[bagel.Flavor]*bagel.Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	for flavor, r := range inputs {
		flavor, r := flavor, r
		sch, err := d.Schema(flavor)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := sch.Validate(r)
			if err != nil {
				return fmt.Errorf("flavor %s: %w", flavor, err)
			}
			mu.Lock()
			results[flavor] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Schema is a handle on one registered flavor, bound to the policy and
// ingestion limits of the Digest that created it.
type Schema struct {
	digest *Digest
	schema *schema.Schema
}

// Flavor returns the flavor the handle validates against.
func (s *Schema) Flavor() bagel.Flavor {
	return bagel.Flavor(s.schema.ID())
}

// ValidateOption adjusts how a single table is read.
type ValidateOption func(*readOptions)

type readOptions struct {
	delimiter rune
	filename  string
}

// WithDelimiter forces the field delimiter instead of sniffing the first
// line of the input.
func WithDelimiter(delimiter rune) ValidateOption {
	return func(o *readOptions) {
		o.delimiter = delimiter
	}
}

// WithFilename derives the field delimiter from a file name's extension,
// .csv or .tsv. An explicit WithDelimiter takes precedence.
func WithFilename(name string) ValidateOption {
	return func(o *readOptions) {
		o.filename = name
	}
}

// Validate reads one digest table and checks it against the schema. The
// result carries the validated records, every violation found, and the
// aggregated summary of the records. An error is returned only when the
// input cannot be read as a table; everything the table does wrong
// against its schema is reported in the result's violations.
func (s *Schema) Validate(r io.Reader, options ...ValidateOption) (*bagel.Result, error) {
	var ro readOptions
	for _, opt := range options {
		opt(&ro)
	}

	if ro.delimiter == 0 && ro.filename != "" {
		delimiter, err := tabular.DetectDelimiter(ro.filename)
		if err != nil {
			return nil, types.WrapError(types.TABLE_PARSE_FAILED, "cannot choose a delimiter", err)
		}
		ro.delimiter = delimiter
	}

	topts := []tabular.Option{
		tabular.WithLimits(s.digest.maxRows, s.digest.maxColumns),
	}
	if ro.delimiter != 0 {
		topts = append(topts, tabular.WithDelimiter(ro.delimiter))
	}

	tbl, err := tabular.Read(r, topts...)
	if err != nil {
		return nil, types.WrapError(types.TABLE_PARSE_FAILED, "reading digest table", err)
	}

	runID := bagel.NewID()
	logger := s.digest.logger.With("run_id", runID.String(), "flavor", s.schema.ID())
	logger.Info("validating digest table", "rows", tbl.Len(), "columns", len(tbl.Headers))

	outcome := validate.Validate(tbl, s.schema, validate.Policy{
		Unrecognized: s.digest.policy,
		Logger:       logger,
	})

	summary := aggregate.Summarize(outcome.Records)
	summary.Flavor = s.Flavor()

	result := &bagel.Result{
		RunID:      runID,
		Flavor:     s.Flavor(),
		Records:    outcome.Records,
		Violations: outcome.Violations,
		Summary:    &summary,
	}

	if result.Clean() {
		logger.Info("digest table is clean", "records", len(result.Records))
	} else {
		logger.Warn("digest table has violations",
			"violations", len(result.Violations),
			"records", len(result.Records))
	}

	return result, nil
}

// defaultDigest backs the package-level helpers. It is built once, on
// first use, with the builtin flavors and default options.
var defaultDigest = sync.OnceValues(func() (*Digest, error) {
	return New()
})

// Validate checks one digest table against a builtin flavor using a
// shared default instance.
func Validate(flavor bagel.Flavor, r io.Reader, options ...ValidateOption) (*bagel.Result, error) {
	d, err := defaultDigest()
	if err != nil {
		return nil, err
	}
	sch, err := d.Schema(flavor)
	if err != nil {
		return nil, err
	}
	return sch.Validate(r, options...)
}

// Aggregate reduces validated records into a summary, for example after
// filtering a result's records down to a selection.
func Aggregate(records []bagel.Record) bagel.Summary {
	return aggregate.Summarize(records)
}
