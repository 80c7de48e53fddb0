// Package table reads and writes delimited tables with a header row.
//
// Inputs may be local files or http(s) URLs. Several inputs are read
// concurrently and concatenated in the order given; they must share the
// same header. Row width is not enforced here so that callers can decide how
// to treat ragged rows.
package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"autofeat/internal/datasource"
	"autofeat/internal/datasource/httpds"
)

// DefaultComma separates fields when Options.Comma is zero.
const DefaultComma = '\t'

// Origin locates a row in its input.
type Origin struct {
	Source string
	Line   int
}

// Dataset is a header plus rows of cells. Origins, when set, is aligned with
// Rows.
type Dataset struct {
	Header  []string
	Rows    [][]string
	Origins []Origin
}

// Options configures Load.
type Options struct {
	// Comma is the field delimiter; zero means tab.
	Comma rune
	// Client fetches http(s) inputs; nil uses a default retrying client.
	Client *httpds.Client
	// Logger defaults to zap.L().
	Logger *zap.Logger
}

type part struct {
	header  []string
	rows    [][]string
	origins []Origin
}

// Load reads every location and concatenates the rows in argument order.
func Load(ctx context.Context, opt Options, locations ...string) (*Dataset, error) {
	if len(locations) == 0 {
		return nil, ErrNoInput
	}
	log := opt.Logger
	if log == nil {
		log = zap.L()
	}
	comma := opt.Comma
	if comma == 0 {
		comma = DefaultComma
	}

	parts := make([]part, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, loc := range locations {
		i, loc := i, loc
		g.Go(func() error {
			p, err := readOne(gctx, datasource.For(loc, opt.Client), loc, comma)
			if err != nil {
				return fmt.Errorf("load %s: %w", loc, err)
			}
			parts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Dataset{Header: parts[0].header}
	for i, p := range parts {
		if !slices.Equal(p.header, out.Header) {
			return nil, fmt.Errorf("%w: %s has %v, %s has %v",
				ErrHeaderMismatch, locations[0], out.Header, locations[i], p.header)
		}
		out.Rows = append(out.Rows, p.rows...)
		out.Origins = append(out.Origins, p.origins...)
		log.Debug("table loaded", zap.String("source", locations[i]), zap.Int("rows", len(p.rows)))
	}
	return out, nil
}

func readOne(ctx context.Context, src datasource.Source, name string, comma rune) (part, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return part{}, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return part{}, ErrEmptyInput
	}
	if err != nil {
		return part{}, fmt.Errorf("read header: %w", err)
	}

	p := part{header: NormalizeHeader(header)}
	for {
		if err := ctx.Err(); err != nil {
			return part{}, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return part{}, fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)
		p.rows = append(p.rows, rec)
		p.origins = append(p.origins, Origin{Source: name, Line: line})
	}
	return p, nil
}

// headerCleaner drops byte order marks and control characters and composes
// the remaining runes into NFC, so that visually equal names compare equal.
var headerCleaner = transform.Chain(
	runes.Remove(runes.Predicate(func(r rune) bool { return r == '\uFEFF' || unicode.IsControl(r) })),
	norm.NFC,
)

// NormalizeHeader returns the cleaned header names. Case is preserved.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		s, _, err := transform.String(headerCleaner, h)
		if err != nil {
			s = h
		}
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// Write stores header and rows at path, replacing any existing file. The
// table is written to a temporary file in the same directory and renamed.
func Write(path string, comma rune, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTo(tmp, comma, header, rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := MatchMode(tmp, path); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// DefaultFileMode is the mode given to a newly created output file.
const DefaultFileMode os.FileMode = 0o644

// MatchMode gives tmp the permission bits of the file at path, or
// DefaultFileMode when path does not exist yet. os.CreateTemp creates files
// as 0600 and a rename keeps that, so callers replacing path call this
// before renaming.
func MatchMode(tmp *os.File, path string) error {
	mode := DefaultFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	return nil
}

// WriteTo writes header and rows to w.
func WriteTo(w io.Writer, comma rune, header []string, rows [][]string) error {
	if comma == 0 {
		comma = DefaultComma
	}
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
