package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyEvent      = "event"
	KeyGenerator  = "generator"
	KeyExitCode   = "exit_code"
	KeyOutput     = "output"
	KeyDirective  = "directive"
	KeyTransform  = "transform"
	KeyPriority   = "priority"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyDir        = "dir"
	KeyCommit     = "commit"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func Generator(name string) slog.Attr { return slog.String(KeyGenerator, name) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Output(out string) slog.Attr     { return slog.String(KeyOutput, out) }
func Directive(name string) slog.Attr { return slog.String(KeyDirective, name) }
func Transform(name string) slog.Attr { return slog.String(KeyTransform, name) }
func Priority(p int) slog.Attr        { return slog.Int(KeyPriority, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
