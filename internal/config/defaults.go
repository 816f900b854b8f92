package config

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.baseDir = "."
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Project.Name == "" {
		cfg.Project.Name = "Documentation"
	}
	if cfg.Project.MasterDoc == "" {
		cfg.Project.MasterDoc = "index"
	}
	if cfg.Project.VersionFile == "" {
		cfg.Project.VersionFile = "VERSION.txt"
	}

	p := &cfg.Paths
	if p.DocsDir == "" {
		p.DocsDir = "."
	}
	if p.RepoRoot == "" {
		p.RepoRoot = ".."
	}
	if p.OutputDir == "" {
		p.OutputDir = "_build/html"
	}
	if p.StaticDirs == nil {
		p.StaticDirs = []string{"_static"}
	}
	if p.Marker == "" {
		p.Marker = "_FIRST_RUN.flag"
	}

	e := &cfg.Engine
	if e.SourceSuffix == "" {
		e.SourceSuffix = ".md"
	}
	if e.OutputSuffix == "" {
		e.OutputSuffix = ".html"
	}
	if e.ExcludePatterns == nil {
		e.ExcludePatterns = []string{"_build/**", "**/Thumbs.db", "**/.DS_Store"}
	}
	if e.LinkRewritePriority == 0 {
		e.LinkRewritePriority = 210
	}
	if e.JSFiles == nil {
		e.JSFiles = []string{"js/script.js"}
	}

	a := &cfg.APIDocs
	if a.Project == "" {
		a.Project = cfg.Project.Name
	}
	if a.Header == "" {
		a.Header = "include/LightGBM/c_api.h"
	}
	if a.OutputDir == "" {
		a.OutputDir = "doxyoutput"
	}
	if a.XMLSubdir == "" {
		a.XMLSubdir = "xml"
	}
	if a.Predefined == nil {
		a.Predefined = []string{"__cplusplus"}
	}
	if a.Directive == "" {
		a.Directive = "doxygenfile"
	}
	if a.DomainByExtension == nil {
		a.DomainByExtension = map[string]string{"h": "c"}
	}

	pd := &cfg.PackageDocs
	if pd.BuildScript == "" {
		pd.BuildScript = "build-cran-package.sh"
	}
	if pd.Tarball == "" {
		pd.Tarball = "lightgbm_*.tar.gz"
	}
	if pd.PkgdownDir == "" {
		pd.PkgdownDir = "R-package/pkgdown"
	}
	if pd.StagingDir == "" {
		pd.StagingDir = "lightgbm_r"
	}
	if pd.SiteDir == "" {
		pd.SiteDir = "lightgbm_r/docs"
	}
	if pd.OutputSubpath == "" {
		pd.OutputSubpath = "R"
	}
	if pd.RLibs == "" {
		// Left for bash to expand inside the generated script.
		pd.RLibs = "$CONDA_PREFIX/lib/R/library"
	}
	if pd.Tar == "" {
		pd.Tar = "/bin/tar"
	}
	if pd.Seed == 0 {
		pd.Seed = 42
	}

	g := &cfg.Generators
	if g.Doxygen == "" {
		g.Doxygen = "doxygen"
	}
	if g.Shell == "" {
		g.Shell = "/bin/bash"
	}
	if g.Env == nil {
		g.Env = map[string]string{}
	}
	if _, ok := g.Env["LIGHTGBM_BUILD_DOC"]; !ok {
		g.Env["LIGHTGBM_BUILD_DOC"] = "1"
	}

	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "docorch.build.finished"
	}
}
