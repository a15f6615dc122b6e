// Package validate implements the record validator: it checks a parsed
// digest table against a schema flavor, accumulating every violation in the
// table rather than stopping at the first, and materializes the rows that
// pass every check as records.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/neurobagel/digest/bagel"
	"github.com/neurobagel/digest/internal/schema"
	"github.com/neurobagel/digest/internal/tabular"
)

// Outcome is the result of one validation pass.
type Outcome struct {
	// Records holds the rows implicated in no violation, in input order.
	// It is empty when any table-scoped violation was found.
	Records []bagel.Record

	// Violations lists every finding, in check order.
	Violations bagel.List

	// Unrecognized lists the headers matched by no schema column, in header
	// order, regardless of policy.
	Unrecognized []string
}

// Clean reports whether the pass found no violations.
func (o Outcome) Clean() bool {
	return len(o.Violations) == 0
}

// column pairs a table header with its classification against the schema.
type column struct {
	name  string
	index int
	match schema.Match
	known bool
}

// pass carries the state of one validation run.
type pass struct {
	tbl *tabular.Table
	sch *schema.Schema
	pol Policy

	cols       []column
	violations bagel.List
}

// Validate checks a table against a schema flavor. It never returns an
// error: every finding surfaces as a violation in the outcome, so a data
// producer can fix the whole table in one round.
func Validate(tbl *tabular.Table, sch *schema.Schema, pol Policy) Outcome {
	p := &pass{tbl: tbl, sch: sch, pol: pol}

	p.classify()
	p.checkRequired()
	p.checkCells()
	p.checkPipelineMetadata()
	p.checkPhaseStage()
	p.checkDuplicateKeys()
	p.checkUnrecognized()

	out := Outcome{
		Records:      p.records(),
		Violations:   p.violations,
		Unrecognized: p.unrecognizedHeaders(),
	}

	pol.logger().Debug("validated table",
		"schema", sch.ID(),
		"rows", tbl.Len(),
		"records", len(out.Records),
		"violations", len(out.Violations))

	return out
}

func (p *pass) add(v bagel.Violation) {
	p.violations = append(p.violations, v)
}

// classify resolves every header against the schema once up front.
func (p *pass) classify() {
	p.cols = make([]column, 0, len(p.tbl.Headers))
	for i, h := range p.tbl.Headers {
		m, ok := p.sch.Classify(h)
		p.cols = append(p.cols, column{name: h, index: i, match: m, known: ok})
	}
}

func (p *pass) unrecognizedHeaders() []string {
	var out []string
	for _, c := range p.cols {
		if !c.known {
			out = append(out, c.name)
		}
	}
	return out
}

// checkRequired reports required non-prefixed columns absent from the
// header row. These findings are table-scoped: without the column no row
// can form a complete record.
func (p *pass) checkRequired() {
	for _, spec := range p.sch.Required() {
		if !p.tbl.Has(spec.Label) {
			p.add(bagel.Violation{
				Kind:    bagel.KindMissingRequiredColumn,
				Column:  spec.Label,
				Message: "required column is missing",
			})
		}
	}
}

// checkCells enforces per-cell dtype and range conformance. Findings are
// grouped per column and offending value so each distinct mistake is
// reported once with all the rows it occurs on.
func (p *pass) checkCells() {
	for _, col := range p.cols {
		if !col.known {
			continue
		}
		switch {
		case col.match.Spec.DType == schema.DTypeBool:
			p.checkBoolColumn(col)
		case col.match.Spec.Categorical():
			p.checkRangeColumn(col)
		}
	}
}

// checkBoolColumn flags cells that are not exactly "true" or "false".
func (p *pass) checkBoolColumn(col column) {
	groups := newValueGroups()
	for i, row := range p.tbl.Rows {
		if v := row[col.index]; v != "true" && v != "false" {
			groups.add(v, i)
		}
	}
	for _, v := range groups.ordered {
		p.add(bagel.Violation{
			Kind:    bagel.KindTypeMismatch,
			Rows:    groups.rows[v],
			Column:  col.name,
			Message: fmt.Sprintf(`expected "true" or "false", got %q`, v),
		})
	}
}

// checkRangeColumn flags categorical cells outside the declared range and
// missing-value sentinel.
func (p *pass) checkRangeColumn(col column) {
	spec := col.match.Spec
	groups := newValueGroups()
	for i, row := range p.tbl.Rows {
		if v := row[col.index]; !spec.Accepts(v) {
			groups.add(v, i)
		}
	}
	if len(groups.ordered) == 0 {
		return
	}
	allowed := quoteList(acceptedValues(spec))
	for _, v := range groups.ordered {
		p.add(bagel.Violation{
			Kind:    bagel.KindOutOfRangeValue,
			Rows:    groups.rows[v],
			Column:  col.name,
			Message: fmt.Sprintf("value must be one of: %s (got %q)", allowed, v),
		})
	}
}

// checkPipelineMetadata enforces that pipeline_name and pipeline_version
// agree about availability: a row either names a real pipeline run or
// marks both fields UNAVAILABLE.
func (p *pass) checkPipelineMetadata() {
	if _, ok := p.sch.Exact(bagel.ColPipelineName); !ok {
		return
	}
	if _, ok := p.sch.Exact(bagel.ColPipelineVersion); !ok {
		return
	}
	ni, ok := p.tbl.Index(bagel.ColPipelineName)
	if !ok {
		return
	}
	vi, ok := p.tbl.Index(bagel.ColPipelineVersion)
	if !ok {
		return
	}

	unavailable := string(bagel.StatusUnavailable)
	var rows []int
	for i, row := range p.tbl.Rows {
		if (row[ni] == unavailable) != (row[vi] == unavailable) {
			rows = append(rows, i)
		}
	}
	if len(rows) > 0 {
		p.add(bagel.Violation{
			Kind: bagel.KindInconsistentPipelineMetadata,
			Rows: rows,
			Message: fmt.Sprintf("%s and %s must either both be %s or both name a pipeline run",
				bagel.ColPipelineName, bagel.ColPipelineVersion, unavailable),
		})
	}
}

// checkPhaseStage resolves every phase and stage header against the
// pipelines actually present in the table, then enforces the hierarchy
// rule: a row with a phase status needs at least one stage status for the
// same pipeline when the table carries both families.
func (p *pass) checkPhaseStage() {
	ni, haveNames := p.tbl.Index(bagel.ColPipelineName)

	present := make(map[string]bool)
	if haveNames {
		for _, row := range p.tbl.Rows {
			present[row[ni]] = true
		}
	}

	phaseCols := make(map[string][]column)
	stageCols := make(map[string][]column)

	for _, col := range p.cols {
		if !col.known || !col.match.Prefixed() {
			continue
		}
		label := col.match.Spec.Label
		if label != bagel.PrefixPhase && label != bagel.PrefixStage {
			continue
		}
		pipeline, _, ok := col.match.PhaseRef()
		if !ok {
			p.addOrphaned(col, fmt.Sprintf("header suffix must name a pipeline and a %s", strings.ToLower(label)))
			continue
		}
		// Resolution needs the pipeline_name column. When it is missing
		// the required-column finding already covers the table.
		if haveNames && !present[pipeline] {
			p.addOrphaned(col, fmt.Sprintf("references pipeline %q, which never appears in %s",
				pipeline, bagel.ColPipelineName))
			continue
		}
		if label == bagel.PrefixPhase {
			phaseCols[pipeline] = append(phaseCols[pipeline], col)
		} else {
			stageCols[pipeline] = append(stageCols[pipeline], col)
		}
	}

	pipelines := make([]string, 0, len(phaseCols))
	for pipeline := range phaseCols {
		if len(stageCols[pipeline]) > 0 {
			pipelines = append(pipelines, pipeline)
		}
	}
	sort.Strings(pipelines)

	for _, pipeline := range pipelines {
		var rows []int
		for i, row := range p.tbl.Rows {
			if anyNonEmpty(row, phaseCols[pipeline]) && !anyNonEmpty(row, stageCols[pipeline]) {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			p.add(bagel.Violation{
				Kind:    bagel.KindPhaseWithoutStage,
				Rows:    rows,
				Message: fmt.Sprintf("rows set a phase status for pipeline %q but no stage status", pipeline),
			})
		}
	}
}

// anyNonEmpty reports whether the row carries a status under any of the
// given columns.
func anyNonEmpty(row []string, cols []column) bool {
	for _, c := range cols {
		if row[c.index] != "" {
			return true
		}
	}
	return false
}

// addOrphaned reports a phase or stage header that resolves to no pipeline.
// The rows carrying a status under the header are listed; a header whose
// cells are all empty is reported once, table-scoped.
func (p *pass) addOrphaned(col column, reason string) {
	var rows []int
	for i, row := range p.tbl.Rows {
		if row[col.index] != "" {
			rows = append(rows, i)
		}
	}
	p.add(bagel.Violation{
		Kind:    bagel.KindOrphanedPhaseOrStage,
		Rows:    rows,
		Column:  col.name,
		Message: reason,
	})
}

// checkDuplicateKeys reports rows whose record key repeats an earlier row,
// one violation per repeat. Both rows are implicated: with two statuses for
// one key the table does not say which is authoritative.
func (p *pass) checkDuplicateKeys() {
	for _, label := range p.sch.Keys().Columns {
		spec, ok := p.sch.Exact(label)
		if ok && spec.Required && !p.tbl.Has(label) {
			// Keys cannot be assembled; the missing column is already
			// reported.
			return
		}
	}

	seen := make(map[bagel.RecordKey]int, p.tbl.Len())
	for i := range p.tbl.Rows {
		key := p.recordKey(i)
		if first, dup := seen[key]; dup {
			p.add(bagel.Violation{
				Kind:    bagel.KindDuplicateRecordKey,
				Rows:    []int{first, i},
				Message: "duplicate record key " + key.String(),
			})
			continue
		}
		seen[key] = i
	}
}

// checkUnrecognized applies the policy for headers no schema column
// matched.
func (p *pass) checkUnrecognized() {
	policy := p.pol.unrecognized()
	if policy == UnrecognizedIgnore {
		return
	}
	for _, col := range p.cols {
		if col.known {
			continue
		}
		if policy == UnrecognizedReject {
			p.add(bagel.Violation{
				Kind:    bagel.KindUnrecognizedColumn,
				Column:  col.name,
				Message: fmt.Sprintf("header matches no column of the %s schema", p.sch.ID()),
			})
			continue
		}
		p.pol.logger().Warn("unrecognized column in digest file",
			"schema", p.sch.ID(),
			"column", col.name)
	}
}

// records materializes the rows implicated in no violation. A table-scoped
// finding means the table shape itself is wrong, so no row is trusted as a
// complete record.
func (p *pass) records() []bagel.Record {
	for _, v := range p.violations {
		if v.TableScoped() {
			return nil
		}
	}

	flagged := make(map[int]bool)
	for _, v := range p.violations {
		for _, r := range v.Rows {
			flagged[r] = true
		}
	}

	var out []bagel.Record
	for i, row := range p.tbl.Rows {
		if flagged[i] {
			continue
		}
		values := make(map[string]string, len(p.tbl.Headers))
		for j, h := range p.tbl.Headers {
			values[h] = row[j]
		}
		out = append(out, bagel.Record{
			Row:    i,
			Flavor: bagel.Flavor(p.sch.ID()),
			Key:    p.recordKey(i),
			Values: values,
		})
	}
	return out
}

// recordKey assembles the key tuple for one row. Key columns absent from
// the table contribute empty fields.
func (p *pass) recordKey(row int) bagel.RecordKey {
	cols := p.sch.Keys().Columns
	key := bagel.RecordKey{
		ParticipantID: p.tbl.Value(row, cols[0]),
		Session:       p.tbl.Value(row, cols[1]),
	}
	if len(cols) > 2 {
		key.Name = p.tbl.Value(row, cols[2])
	}
	if len(cols) > 3 {
		key.Version = p.tbl.Value(row, cols[3])
	}
	return key
}

// valueGroups buckets row indexes by cell value, preserving first-seen
// value order for deterministic output.
type valueGroups struct {
	ordered []string
	rows    map[string][]int
}

func newValueGroups() *valueGroups {
	return &valueGroups{rows: make(map[string][]int)}
}

func (g *valueGroups) add(value string, row int) {
	if _, ok := g.rows[value]; !ok {
		g.ordered = append(g.ordered, value)
	}
	g.rows[value] = append(g.rows[value], row)
}

// acceptedValues lists a categorical column's allowed literals, including
// the missing-value sentinel when it declares one.
func acceptedValues(spec *schema.ColumnSpec) []string {
	vals := append([]string(nil), spec.Range...)
	if spec.MissingValue != nil {
		dup := false
		for _, v := range vals {
			if v == *spec.MissingValue {
				dup = true
				break
			}
		}
		if !dup {
			vals = append(vals, *spec.MissingValue)
		}
	}
	return vals
}

func quoteList(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}
