// Package engine is the document engine driven by docorch.
//
// It turns a tree of Markdown pages into HTML and exposes the narrow surface
// the lifecycle hooks rely on:
//
//   - a lifecycle event table (EventBuilderInited before any page is read,
//     EventBuildFinished after the last page is written),
//   - prioritized tree transforms run after parsing,
//   - a directive registry for fenced blocks written as ```{name} args,
//   - script asset registration through AddJSFile (and the deprecated
//     AddJavaScript).
//
// Parsing and HTML rendering are delegated to goldmark.
package engine
