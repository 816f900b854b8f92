// Package generator runs the external documentation generators: the C-API
// symbol extractor (doxygen) and the R package documentation build.
//
// Every run is a single blocking child process. Its parameter block or
// script is written to the child's stdin, stdout and stderr are captured,
// and a non-zero exit becomes a fatal generator error whose message carries
// the captured output.
package generator
