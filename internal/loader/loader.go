package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prism-data/prism/internal/dispatch"
	"github.com/prism-data/prism/internal/manifest"
)

// Archive resolves an instrument and time range to the locations of the
// archived series files overlapping it, in deterministic order.
// Implemented by catalog.Catalog.
type Archive interface {
	LocationsInRange(ctx context.Context, instrument string, start, end time.Time) ([]string, error)
}

// Loader routes one polymorphic Load call to the loader matching the
// caller-supplied value: an existing file path, a directory, a glob
// pattern, a list of paths, a URL, or an (instrument, start, end) range.
//
// The routing table mirrors the precedence the conditions encode: an
// existing file beats a directory beats glob expansion, and the URL
// loader is the catch-all for strings nothing else claimed.
type Loader struct {
	registry    *dispatch.Registry
	client      *http.Client
	archive     Archive
	instruments map[string]manifest.Instrument
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the HTTP client used by the URL loader.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.client = client
	}
}

// WithArchive attaches the archive index the range loader queries.
func WithArchive(archive Archive) Option {
	return func(l *Loader) {
		l.archive = archive
	}
}

// WithInstruments attaches compiled instrument manifests. When set, the
// range loader rejects unknown instruments and resolves relative archive
// locations against the instrument's base location.
func WithInstruments(instruments map[string]manifest.Instrument) Option {
	return func(l *Loader) {
		l.instruments = instruments
	}
}

// New builds a Loader and registers its routing table.
func New(opts ...Option) *Loader {
	l := &Loader{
		registry: dispatch.New(),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}

	isString := dispatch.OfType[string]()

	l.registry.MustRegister(
		dispatch.MustFunc("fromFile", l.fromFile, dispatch.P("source")),
		dispatch.When(dispatch.MustFunc("isFile", isFile, dispatch.P("source"))),
		dispatch.WithTypes(isString),
	)
	l.registry.MustRegister(
		dispatch.MustFunc("fromDir", l.fromDir, dispatch.P("source")),
		dispatch.When(dispatch.MustFunc("isDir", isDir, dispatch.P("source"))),
		dispatch.WithTypes(isString),
	)
	// A single match loads as one series, not a one-element list. This
	// entry only fires when exactly one file matches; the general glob
	// entry behind it handles the rest. Its parameter is deliberately
	// named "singlepattern" so that a named pattern= argument bypasses it
	// and always yields a list.
	l.registry.MustRegister(
		dispatch.MustFunc("fromSingleGlob", l.fromSingleGlob, dispatch.P("singlepattern")),
		dispatch.When(dispatch.MustFunc("isSingleGlob", isSingleGlob, dispatch.P("singlepattern"))),
		dispatch.WithTypes(isString),
	)
	l.registry.MustRegister(
		dispatch.MustFunc("fromGlob", l.fromGlob, dispatch.P("pattern")),
		dispatch.When(dispatch.MustFunc("isGlob", isGlob, dispatch.P("pattern"))),
		dispatch.WithTypes(isString),
	)
	l.registry.MustRegister(
		dispatch.MustFunc("fromFiles", l.fromFiles, dispatch.P("sources")),
		dispatch.WithTypes(dispatch.OfType[[]string]()),
	)
	l.registry.MustRegister(
		dispatch.MustFunc("fromURL", l.fromURL, dispatch.P("url")),
		dispatch.WithTypes(isString),
	)
	l.registry.MustRegister(
		dispatch.MustFunc("fromRange", l.fromRange,
			dispatch.P("instrument"), dispatch.P("start"), dispatch.P("end")),
	)

	return l
}

// Load dispatches a purely positional load call. The result is a *Series
// or a []*Series depending on the loader that fires.
func (l *Loader) Load(args ...any) (any, error) {
	return l.registry.Invoke(args...)
}

// LoadKw dispatches a load call with named arguments, e.g.
// LoadKw(nil, map[string]any{"pattern": "data/*.yaml"}) to force glob
// routing for a pattern that happens to name an existing file.
func (l *Loader) LoadKw(args []any, kwargs map[string]any) (any, error) {
	return l.registry.InvokeKw(args, kwargs)
}

// Routes returns the routing table in consideration order.
func (l *Loader) Routes() []dispatch.EntryInfo {
	return l.registry.Entries()
}

func (l *Loader) fromFile(source string) (*Series, error) {
	return ReadFile(source)
}

func (l *Loader) fromDir(source string) ([]*Series, error) {
	dirEntries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("load dir: %w", err)
	}
	var paths []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		switch filepath.Ext(de.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(source, de.Name()))
		}
	}
	sort.Strings(paths)
	return ReadMany(paths)
}

func (l *Loader) fromSingleGlob(pattern string) (*Series, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("load glob: %w", err)
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("load glob: %q matched %d files, expected exactly one", pattern, len(matches))
	}
	return ReadFile(matches[0])
}

func (l *Loader) fromGlob(pattern string) ([]*Series, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("load glob: %w", err)
	}
	sort.Strings(matches)
	return ReadMany(matches)
}

func (l *Loader) fromFiles(sources []string) ([]*Series, error) {
	return ReadMany(sources)
}

func (l *Loader) fromURL(rawURL string) (*Series, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return Decode(data, rawURL)
}

// fromRange loads everything archived for an instrument between start and
// end, joins it into one series and clips it to the requested interval.
// Each archived location is routed back through the dispatcher, so files
// and URLs mix freely in one archive.
func (l *Loader) fromRange(instrument string, start, end time.Time) (*Series, error) {
	if l.archive == nil {
		return nil, fmt.Errorf("load range: no archive configured")
	}
	key := manifest.Key(instrument)
	var base string
	if len(l.instruments) > 0 {
		inst, ok := l.instruments[key]
		if !ok {
			return nil, fmt.Errorf("load range: unknown instrument %q", instrument)
		}
		base = inst.Archive
	}

	locations, err := l.archive.LocationsInRange(context.Background(), key, start, end)
	if err != nil {
		return nil, fmt.Errorf("load range: %w", err)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("load range: no archived data for %q in [%s, %s)",
			key, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	parts := make([]*Series, 0, len(locations))
	for _, loc := range locations {
		resolved, err := resolveLocation(base, loc)
		if err != nil {
			return nil, fmt.Errorf("load range: %w", err)
		}
		res, err := l.Load(resolved)
		if err != nil {
			return nil, err
		}
		part, ok := res.(*Series)
		if !ok {
			return nil, fmt.Errorf("load range: location %q did not resolve to a single series", resolved)
		}
		parts = append(parts, part)
	}

	joined, err := Join(parts)
	if err != nil {
		return nil, fmt.Errorf("load range: %w", err)
	}
	return joined.Clip(start, end), nil
}

// resolveLocation resolves a possibly relative archive location against
// an instrument's base location. Absolute paths and full URLs pass
// through unchanged.
func resolveLocation(base, location string) (string, error) {
	if base == "" || isURL(location) || filepath.IsAbs(location) {
		return location, nil
	}
	if isURL(base) {
		return url.JoinPath(base, location)
	}
	return filepath.Join(base, location), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isFile(source string) bool {
	info, err := os.Stat(source)
	return err == nil && info.Mode().IsRegular()
}

func isDir(source string) bool {
	info, err := os.Stat(source)
	return err == nil && info.IsDir()
}

// hasGlobMeta reports whether the pattern contains glob metacharacters.
// Plain paths never route to the glob loaders.
func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

func isSingleGlob(pattern string) bool {
	if !hasGlobMeta(pattern) {
		return false
	}
	matches, err := filepath.Glob(pattern)
	return err == nil && len(matches) == 1
}

func isGlob(pattern string) bool {
	if !hasGlobMeta(pattern) {
		return false
	}
	matches, err := filepath.Glob(pattern)
	return err == nil && len(matches) > 0
}
