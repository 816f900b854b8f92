package generator

import (
	"bytes"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// PackageDocsFailure is the headline of a failed R package documentation build.
const PackageDocsFailure = "An error has occurred while generating documentation for R-package"

// PackageDocsParams configures the R package documentation build. Paths are
// relative to RepoRoot unless absolute.
type PackageDocsParams struct {
	RepoRoot    string
	BuildScript string
	TarballGlob string
	PkgdownSrc  string
	StagingDir  string
	// RLibs is placed in double quotes so the shell expands variables in it.
	RLibs string
	Tar   string
	Seed  int
}

var packageDocsScript = template.Must(template.New("r-package").Funcs(template.FuncMap{
	"quote": shellQuote,
}).Option("missingkey=error").Parse(`export TAR={{quote .Tar}}
cd {{quote .RepoRoot}}
export R_LIBS="{{.RLibs}}"
sh {{quote .BuildScript}} || exit -1
R CMD INSTALL --with-keep.source {{.TarballGlob}} || exit -1
cp -R {{quote .PkgdownSrc}} {{quote .StagingDir}}/pkgdown
cd {{quote .StagingDir}}
Rscript -e "roxygen2::roxygenize(load = 'installed')" || exit -1
Rscript -e "pkgdown::build_site(lazy = FALSE, install = FALSE, devel = FALSE, examples = TRUE, run_dont_run = TRUE, seed = {{.Seed}}L, preview = FALSE, new_process = TRUE)" || exit -1
cd {{quote .RepoRoot}}
`))

// Script renders the shell script run by the package documentation build.
func (p PackageDocsParams) Script() (string, error) {
	fields := map[string]string{
		"repo root":    p.RepoRoot,
		"build script": p.BuildScript,
		"tarball":      p.TarballGlob,
		"pkgdown dir":  p.PkgdownSrc,
		"staging dir":  p.StagingDir,
		"r_libs":       p.RLibs,
		"tar":          p.Tar,
	}
	for name, v := range fields {
		if v == "" {
			return "", errors.ValidationError("R package parameter " + name + " is required").Build()
		}
		if strings.ContainsAny(v, "\r\n") {
			return "", invalidParam("R package", name, v)
		}
	}
	if strings.ContainsAny(p.RLibs, `"`+"`") || strings.ContainsAny(p.TarballGlob, " \t;&|`$") {
		return "", validationError("R package parameters contain shell metacharacters", p.RLibs+" "+p.TarballGlob)
	}

	var buf bytes.Buffer
	if err := packageDocsScript.Execute(&buf, p); err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to render R package script").Build()
	}
	return buf.String(), nil
}

// PackageDocsInvocation runs the package documentation script through shell,
// which reads it from stdin.
func PackageDocsInvocation(shell string, p PackageDocsParams) (Invocation, error) {
	script, err := p.Script()
	if err != nil {
		return Invocation{}, err
	}
	if shell == "" {
		shell = "/bin/bash"
	}
	return Invocation{
		Name:           "r-package",
		FailureMessage: PackageDocsFailure,
		Spec: ProcessSpec{
			Name:  "r-package",
			Path:  shell,
			Dir:   p.RepoRoot,
			Stdin: script,
		},
	}, nil
}

// shellQuote wraps s in single quotes unless it is made of safe characters only.
func shellQuote(s string) string {
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("/._-+=:,@%", r)) {
			safe = false
			break
		}
	}
	if safe && s != "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func validationError(msg, value string) error {
	return errors.ValidationError(msg).WithContext("value", value).Build()
}
