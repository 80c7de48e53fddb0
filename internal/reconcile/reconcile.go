// Package reconcile aligns historical tables with a feature schema.
//
// For every underlying attribute the reconciler either copies the columns a
// table already holds, after checking them, or regenerates them from the raw
// values: raw numeric and boolean columns, bucket indicators, enum and text
// one-hot indicators. Interactions are copied or recomputed from their
// components and every other column passes through as a target. Data
// problems never abort a run; they produce warnings and, at worst, an empty
// column.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"autofeat/internal/bucket"
	"autofeat/internal/features"
	"autofeat/internal/metrics"
	"autofeat/internal/table"
)

// MaxTextValues is the largest number of distinct values a text attribute
// may have and still get indicator columns.
const MaxTextValues = 10

// Options controls one reconciliation.
type Options struct {
	// Buckets gives the bucket count per numeric attribute.
	Buckets features.BucketSpec
	// OverwriteAllFeatures keeps every generated column. When false, raw,
	// enum and range columns not already in the schema are dropped.
	OverwriteAllFeatures bool
	// MaxRecords, if positive, caps the number of rows ingested.
	MaxRecords int
}

// Stats summarizes a run.
type Stats struct {
	Ingested    int
	Skipped     int
	Copied      int
	Regenerated int
	Emptied     int
	Passthrough int
	// DroppedInteractions lists interactions left out of the output or the
	// schema because a component was missing.
	DroppedInteractions []string
	Fingerprint         uint64
}

// Result is the reconciled table.
type Result struct {
	Header  []string
	Rows    [][]string
	Columns []features.Column
	Stats   Stats
}

// TableWriter persists a reconciled table.
type TableWriter interface {
	WriteTable(ctx context.Context, header []string, rows [][]string) error
}

// FileWriter writes the table as a delimited file.
type FileWriter struct {
	Path  string
	Comma rune
}

func (w FileWriter) WriteTable(_ context.Context, header []string, rows [][]string) error {
	return table.Write(w.Path, w.Comma, header, rows)
}

// MultiWriter writes to each writer in turn and stops at the first error.
type MultiWriter []TableWriter

func (m MultiWriter) WriteTable(ctx context.Context, header []string, rows [][]string) error {
	for _, w := range m {
		if err := w.WriteTable(ctx, header, rows); err != nil {
			return err
		}
	}
	return nil
}

// Reconciler reconciles tables against Schema and replaces the schema's
// derived columns with what it emitted. It is not safe for concurrent use.
type Reconciler struct {
	Schema *features.Schema
	// Logger defaults to zap.L().
	Logger *zap.Logger
	// Job labels metrics.
	Job string
	// Load configures table loading in Run.
	Load table.Options
	// Writer receives the table in Run; nil skips writing.
	Writer TableWriter
	// SkipLog records skipped rows; may be nil.
	SkipLog *table.SkipLog
}

// New returns a Reconciler over schema.
func New(schema *features.Schema, logger *zap.Logger) *Reconciler {
	return &Reconciler{Schema: schema, Logger: logger}
}

func (r *Reconciler) log() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.L()
}

// Run loads inputs, reconciles them and hands the result to Writer.
func (r *Reconciler) Run(ctx context.Context, opt Options, inputs ...string) (*Result, error) {
	start := time.Now()
	load := r.Load
	if load.Logger == nil {
		load.Logger = r.log()
	}
	data, err := table.Load(ctx, load, inputs...)
	metrics.RecordStep(r.Job, "load", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	start = time.Now()
	res, err := r.Reconcile(data, opt)
	metrics.RecordStep(r.Job, "reconcile", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	if r.Writer != nil {
		start = time.Now()
		err = r.Writer.WriteTable(ctx, res.Header, res.Rows)
		metrics.RecordStep(r.Job, "write", err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("write table: %w", err)
		}
	}
	return res, nil
}

// outCol is one emitted column with its cells.
type outCol struct {
	col   features.Column
	cells []string
}

// run holds the state of one Reconcile call.
type run struct {
	log     *zap.Logger
	schema  *features.Schema
	opt     Options
	header  map[string]int
	rows    [][]string
	out     []outCol
	emitted map[string]int
	stats   Stats
}

// Reconcile aligns data with the schema. On success the schema's derived
// columns mirror the returned columns, targets excluded.
func (r *Reconciler) Reconcile(data *table.Dataset, opt Options) (*Result, error) {
	if r.Schema == nil {
		return nil, fmt.Errorf("reconcile: nil schema")
	}
	st := &run{
		log:     r.log(),
		schema:  r.Schema,
		opt:     opt,
		header:  make(map[string]int, len(data.Header)),
		emitted: make(map[string]int),
	}
	for i, h := range data.Header {
		if _, dup := st.header[h]; !dup {
			st.header[h] = i
		}
	}
	st.ingest(data, r.SkipLog)

	active := make(map[string]struct{}, r.Schema.Len())
	for _, n := range r.Schema.Names() {
		active[n] = struct{}{}
	}

	for _, a := range r.Schema.Attributes() {
		idx, ok := st.header[a.Name]
		if !ok {
			st.log.Debug("attribute not in table", zap.String("attribute", a.Name))
			continue
		}
		raw := st.column(idx)
		switch a.Type.Kind {
		case features.KindBoolean:
			st.booleanColumn(a, raw)
		case features.KindNumeric:
			st.numericColumns(a, raw)
		case features.KindEnum:
			st.enumColumns(a, raw)
		case features.KindText:
			st.textColumns(a, raw)
		}
	}
	st.interactions()
	st.passthrough(data.Header)

	if !opt.OverwriteAllFeatures {
		st.trim(active)
	}

	res := st.result()

	var derived []features.Column
	for _, c := range res.Columns {
		switch c.Kind {
		case features.ColumnEnum, features.ColumnString, features.ColumnRange, features.ColumnInteraction:
			derived = append(derived, c)
		}
	}
	dropped, err := r.Schema.ReplaceDerived(derived)
	if err != nil {
		return nil, fmt.Errorf("reconcile: update schema: %w", err)
	}
	for _, name := range dropped {
		st.log.Warn("interaction dropped from schema", zap.String("column", name))
	}
	res.Stats.DroppedInteractions = append(res.Stats.DroppedInteractions, dropped...)

	metrics.RecordRow(r.Job, "ingested", int64(res.Stats.Ingested))
	metrics.RecordRow(r.Job, "skipped_width", int64(res.Stats.Skipped))
	metrics.RecordRow(r.Job, "copied_columns", int64(res.Stats.Copied))
	metrics.RecordRow(r.Job, "regenerated_columns", int64(res.Stats.Regenerated))
	metrics.RecordRow(r.Job, "emptied_columns", int64(res.Stats.Emptied))

	st.log.Info("reconciled",
		zap.Int("rows", res.Stats.Ingested),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Int("columns", len(res.Header)),
		zap.Int("copied", res.Stats.Copied),
		zap.Int("regenerated", res.Stats.Regenerated),
		zap.Int("emptied", res.Stats.Emptied),
		zap.Uint64("fingerprint", res.Stats.Fingerprint),
	)
	return res, nil
}

// ingest keeps rows whose width matches the header, up to MaxRecords.
func (st *run) ingest(data *table.Dataset, skips *table.SkipLog) {
	width := len(data.Header)
	for i, row := range data.Rows {
		if len(row) != width {
			var o table.Origin
			if i < len(data.Origins) {
				o = data.Origins[i]
			}
			st.log.Warn("skipping row with inconsistent width",
				zap.String("source", o.Source), zap.Int("row", o.Line),
				zap.Int("width", len(row)), zap.Int("want", width))
			skips.Add("width", o, len(row))
			st.stats.Skipped++
			continue
		}
		st.rows = append(st.rows, row)
		if st.opt.MaxRecords > 0 && len(st.rows) >= st.opt.MaxRecords {
			break
		}
	}
	st.stats.Ingested = len(st.rows)
}

func (st *run) column(idx int) []string {
	out := make([]string, len(st.rows))
	for i, row := range st.rows {
		out[i] = row[idx]
	}
	return out
}

func (st *run) headerColumn(name string) ([]string, bool) {
	idx, ok := st.header[name]
	if !ok {
		return nil, false
	}
	return st.column(idx), true
}

func (st *run) emit(c features.Column, cells []string) {
	if _, dup := st.emitted[c.Name]; dup {
		st.log.Warn("duplicate output column ignored", zap.String("column", c.Name))
		return
	}
	st.emitted[c.Name] = len(st.out)
	st.out = append(st.out, outCol{col: c, cells: cells})
}

func (st *run) booleanColumn(a features.Attribute, raw []string) {
	cells := make([]string, len(raw))
	for i, v := range raw {
		b, ok := features.ParseBool(v)
		if !ok {
			st.log.Warn("non-boolean value, emptying column",
				zap.String("column", a.Name), zap.Int("row", i), zap.String("value", v))
			st.emit(features.RawColumn(a.Name, a.Index), make([]string, len(raw)))
			st.stats.Emptied++
			return
		}
		cells[i] = indicator(b)
	}
	st.emit(features.RawColumn(a.Name, a.Index), cells)
	st.stats.Regenerated++
}

func (st *run) numericColumns(a features.Attribute, raw []string) {
	vals, ok := parseNumbers(raw)
	if !ok {
		st.log.Warn("non-numeric value, emptying column", zap.String("column", a.Name))
		st.emit(features.RawColumn(a.Name, a.Index), make([]string, len(raw)))
		st.stats.Emptied++
		return
	}

	b := st.opt.Buckets.For(a.Name)
	if b <= 1 {
		st.emit(features.RawColumn(a.Name, a.Index), raw)
		st.stats.Copied++
		return
	}

	if cols, cells, ok := st.existingRanges(a, b); ok {
		st.emit(features.RawColumn(a.Name, a.Index), raw)
		for i := range cols {
			st.emit(cols[i], cells[i])
		}
		st.stats.Copied++
		return
	}

	if len(vals) > 1 {
		mean, std := stat.MeanStdDev(vals, nil)
		st.log.Debug("bucketing column", zap.String("column", a.Name),
			zap.Int("values", len(vals)), zap.Float64("mean", mean), zap.Float64("stddev", std))
	}

	formatted := make([]string, len(vals))
	for i, v := range vals {
		formatted[i] = formatFloat(v)
	}
	st.emit(features.RawColumn(a.Name, a.Index), formatted)

	for i, rng := range bucket.FromUnsorted(vals, b) {
		cells := make([]string, len(vals))
		for j, v := range vals {
			cells[j] = indicator(rng.Contains(v))
		}
		st.emit(features.RangeIndicator(bucketName(a.Name, i), a.Index, rng), cells)
	}
	st.stats.Regenerated++
}

// existingRanges returns the bucket columns for a when the table already
// holds all b of them, the schema knows their ranges and every cell is 0 or 1.
func (st *run) existingRanges(a features.Attribute, b int) ([]features.Column, [][]string, bool) {
	known := make(map[string]features.Column)
	for _, c := range st.schema.Columns() {
		if c.Kind == features.ColumnRange && c.Source == a.Index {
			known[c.Name] = c
		}
	}
	if len(known) != b {
		return nil, nil, false
	}

	cols := make([]features.Column, 0, b)
	cells := make([][]string, 0, b)
	for i := 0; i < b; i++ {
		name := bucketName(a.Name, i)
		c, ok := known[name]
		if !ok {
			return nil, nil, false
		}
		data, ok := st.headerColumn(name)
		if !ok || !indicatorCells(data) {
			return nil, nil, false
		}
		cols = append(cols, c)
		cells = append(cells, data)
	}
	return cols, cells, true
}

func (st *run) enumColumns(a features.Attribute, raw []string) {
	st.emit(features.TargetColumn(a.Name), raw)

	existing := make([][]string, 0, len(a.Type.Values))
	for _, v := range a.Type.Values {
		data, ok := st.headerColumn(enumName(a.Name, v))
		if !ok || !indicatorCells(data) {
			existing = nil
			break
		}
		existing = append(existing, data)
	}

	if existing != nil {
		for i, v := range a.Type.Values {
			st.emit(features.EnumIndicator(enumName(a.Name, v), a.Index, v), existing[i])
		}
		st.stats.Copied++
		return
	}

	for _, v := range a.Type.Values {
		cells := make([]string, len(raw))
		for i, cell := range raw {
			cells[i] = indicator(cell == v)
		}
		st.emit(features.EnumIndicator(enumName(a.Name, v), a.Index, v), cells)
	}
	st.stats.Regenerated++
}

func (st *run) textColumns(a features.Attribute, raw []string) {
	st.emit(features.TargetColumn(a.Name), raw)

	seen := make(map[string]struct{})
	for _, v := range raw {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	if len(seen) > MaxTextValues {
		st.log.Debug("too many distinct values for indicators",
			zap.String("column", a.Name), zap.Int("distinct", len(seen)))
		return
	}
	// Indicator names feed interaction names, which split on the separator.
	for v := range seen {
		if strings.Contains(v, features.InteractionSep) {
			st.log.Warn("text value contains the interaction separator, no indicator emitted",
				zap.String("column", a.Name), zap.String("value", v))
			delete(seen, v)
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	for _, v := range values {
		cells := make([]string, len(raw))
		for i, cell := range raw {
			cells[i] = indicator(cell == v)
		}
		st.emit(features.StringIndicator(enumName(a.Name, v), a.Index, v), cells)
	}
	st.stats.Regenerated++
}

// interactions copies or computes every interaction of the schema from the
// columns emitted so far.
func (st *run) interactions() {
	for _, c := range st.schema.Columns() {
		if c.Kind != features.ColumnInteraction {
			continue
		}
		names := c.ComponentNames()
		comps := make([][]string, 0, len(names))
		for _, n := range names {
			idx, ok := st.emitted[n]
			if !ok {
				st.log.Warn("interaction component missing, omitting interaction",
					zap.String("column", c.Name), zap.String("component", n))
				st.stats.DroppedInteractions = append(st.stats.DroppedInteractions, c.Name)
				comps = nil
				break
			}
			comps = append(comps, st.out[idx].cells)
		}
		if comps == nil {
			continue
		}

		col := features.Interaction(c.Name)
		if data, ok := st.headerColumn(c.Name); ok {
			st.emit(col, data)
			st.stats.Copied++
			continue
		}
		st.emit(col, st.product(c.Name, comps))
		st.stats.Regenerated++
	}
}

func (st *run) product(name string, comps [][]string) []string {
	cells := make([]string, len(st.rows))
	factors := make([]float64, len(comps))
	for i := range st.rows {
		for j, comp := range comps {
			f, err := strconv.ParseFloat(comp[i], 64)
			if err != nil {
				st.log.Warn("non-numeric interaction component, emptying column",
					zap.String("column", name), zap.Int("row", i), zap.String("value", comp[i]))
				st.stats.Emptied++
				return make([]string, len(st.rows))
			}
			factors[j] = f
		}
		cells[i] = formatFloat(floats.Prod(factors))
	}
	return cells
}

// passthrough emits every remaining header column as a target.
func (st *run) passthrough(header []string) {
	attrs := make(map[string]struct{})
	for _, a := range st.schema.Attributes() {
		attrs[a.Name] = struct{}{}
	}
	for i, h := range header {
		if _, ok := attrs[h]; ok {
			continue
		}
		if _, ok := st.emitted[h]; ok {
			continue
		}
		if st.header[h] != i {
			continue
		}
		st.emit(features.TargetColumn(h), st.column(i))
		st.stats.Passthrough++
	}
}

// trim drops raw, enum and range columns that are not in active.
// Interactions, string indicators and targets are always kept.
func (st *run) trim(active map[string]struct{}) {
	kept := st.out[:0:0]
	for _, oc := range st.out {
		switch oc.col.Kind {
		case features.ColumnRaw, features.ColumnEnum, features.ColumnRange:
			if _, ok := active[oc.col.Name]; !ok {
				st.log.Debug("dropping inactive column", zap.String("column", oc.col.Name))
				continue
			}
		}
		kept = append(kept, oc)
	}
	st.out = kept
}

func (st *run) result() *Result {
	res := &Result{
		Header:  make([]string, len(st.out)),
		Columns: make([]features.Column, len(st.out)),
		Rows:    make([][]string, len(st.rows)),
		Stats:   st.stats,
	}
	for j, oc := range st.out {
		res.Header[j] = oc.col.Name
		res.Columns[j] = oc.col
	}
	for i := range st.rows {
		row := make([]string, len(st.out))
		for j, oc := range st.out {
			row[j] = oc.cells[i]
		}
		res.Rows[i] = row
	}
	res.Stats.DroppedInteractions = slices.Clone(st.stats.DroppedInteractions)
	res.Stats.Fingerprint = table.Fingerprint(res.Header, res.Rows)
	return res
}

func bucketName(attr string, i int) string { return attr + "_B" + strconv.Itoa(i) }
func enumName(attr, value string) string  { return attr + "_" + value }

func indicator(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// parseNumbers parses every cell; a blank or non-numeric cell fails the
// whole column.
func parseNumbers(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		f, err := strconv.ParseFloat(c, 64)
		if err != nil || math.IsNaN(f) {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// indicatorCells reports whether every cell reads as 0 or 1.
func indicatorCells(cells []string) bool {
	for _, c := range cells {
		f, err := strconv.ParseFloat(c, 64)
		if err != nil || (f != 0 && f != 1) {
			return false
		}
	}
	return true
}
