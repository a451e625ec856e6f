package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeySource     = "source"
	KeyRoute      = "route"
	KeyKind       = "kind"
	KeyLayout     = "layout"
	KeyCollection = "collection"
	KeyFormat     = "format"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Layout(name string) slog.Attr    { return slog.String(KeyLayout, name) }
func Collection(c string) slog.Attr   { return slog.String(KeyCollection, c) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
