package engine

// Script is a JavaScript asset included by every rendered page. Relative
// paths resolve against the _static directory of the output.
type Script struct {
	Path  string
	Type  string
	Async bool
	Defer bool
}

// ScriptOption adjusts a Script.
type ScriptOption func(*Script)

// WithScriptType sets the script's type attribute.
func WithScriptType(t string) ScriptOption { return func(s *Script) { s.Type = t } }

// WithAsync marks the script async.
func WithAsync() ScriptOption { return func(s *Script) { s.Async = true } }

// WithDefer marks the script deferred.
func WithDefer() ScriptOption { return func(s *Script) { s.Defer = true } }

// AddJSFile registers a script asset. Adding the same path twice keeps the
// first registration.
func (a *App) AddJSFile(path string, opts ...ScriptOption) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.scripts {
		if s.Path == path {
			return
		}
	}
	s := Script{Path: path}
	for _, opt := range opts {
		opt(&s)
	}
	a.scripts = append(a.scripts, s)
}

// AddJavaScript registers a script asset.
//
// Deprecated: use AddJSFile.
func (a *App) AddJavaScript(path string) {
	a.AddJSFile(path)
}

// Scripts returns the registered script assets in registration order.
func (a *App) Scripts() []Script {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Script(nil), a.scripts...)
}
