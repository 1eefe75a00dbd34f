// Package loader loads instrument series from heterogeneous sources
// behind one polymorphic entry point.
//
// A Loader owns a dispatch.Registry whose entries route a Load call on
// the shape and content of its arguments: an existing file path, a
// directory, a glob pattern matching one or many files, an explicit list
// of paths, a URL, or an (instrument, start, end) time range served from
// an archive catalog. Each loader is an ordinary handler; precedence is
// registration order, with the URL loader acting as the string catch-all
// and the range loader as the three-argument fallback.
//
// Series files are YAML documents carrying the instrument key, the
// coverage interval and the time-stamped samples.
package loader
