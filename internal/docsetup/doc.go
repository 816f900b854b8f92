// Package docsetup wires the documentation build: it decides from the
// environment flags which external generators run before the build, stubs
// the API-doc directive when C-API docs are disabled, registers the link
// rewriter and the site script, and copies the R package site into the
// output once the build has finished.
package docsetup
