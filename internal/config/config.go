package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when -c is not given.
const DefaultFile = "docorch.yaml"

// Config represents the build configuration. It is loaded once and treated as
// read-only by everything downstream of the CLI.
type Config struct {
	Project     ProjectConfig     `yaml:"project"`
	Paths       PathsConfig       `yaml:"paths"`
	Engine      EngineConfig      `yaml:"engine"`
	Theme       ThemeConfig       `yaml:"theme"`
	APIDocs     APIDocsConfig     `yaml:"api_docs"`
	PackageDocs PackageDocsConfig `yaml:"package_docs"`
	Generators  GeneratorsConfig  `yaml:"generators"`
	Metrics     MetricsConfig     `yaml:"metrics,omitempty"`
	Notify      NotifyConfig      `yaml:"notify,omitempty"`

	// Extensions and MockImports are informational; they are reported but do
	// not change engine behaviour.
	Extensions  []string `yaml:"extensions,omitempty"`
	MockImports []string `yaml:"mock_imports,omitempty"`

	// baseDir is the directory holding the configuration file. Relative paths
	// in the file resolve against it.
	baseDir string
}

// ProjectConfig holds project metadata shown in rendered pages.
type ProjectConfig struct {
	Name            string `yaml:"name"`
	Author          string `yaml:"author,omitempty"`
	CopyrightHolder string `yaml:"copyright_holder,omitempty"`
	MasterDoc       string `yaml:"master_doc,omitempty"`
	Language        string `yaml:"language,omitempty"`
	VersionFile     string `yaml:"version_file,omitempty"`
}

// PathsConfig locates the documentation tree. DocsDir is relative to the
// configuration file; everything else is relative to DocsDir unless noted.
type PathsConfig struct {
	DocsDir    string   `yaml:"docs_dir,omitempty"`
	RepoRoot   string   `yaml:"repo_root,omitempty"`
	OutputDir  string   `yaml:"output_dir,omitempty"`
	StaticDirs []string `yaml:"static_dirs,omitempty"`
	Marker     string   `yaml:"marker,omitempty"`
}

// EngineConfig configures the document engine.
type EngineConfig struct {
	NeedsVersion        string   `yaml:"needs_version,omitempty"`
	SourceSuffix        string   `yaml:"source_suffix,omitempty"`
	OutputSuffix        string   `yaml:"output_suffix,omitempty"`
	ExcludePatterns     []string `yaml:"exclude_patterns,omitempty"`
	LinkRewritePriority int      `yaml:"link_rewrite_priority,omitempty"`
	JSFiles             []string `yaml:"js_files,omitempty"`
}

// ThemeConfig is passed through to the page layout.
type ThemeConfig struct {
	Name    string         `yaml:"name,omitempty"`
	Logo    string         `yaml:"logo,omitempty"`
	Favicon string         `yaml:"favicon,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// APIDocsConfig drives the C-API symbol extraction and the API-doc directive.
type APIDocsConfig struct {
	Project               string            `yaml:"project,omitempty"`
	Header                string            `yaml:"header,omitempty"` // relative to repo root
	OutputDir             string            `yaml:"output_dir,omitempty"`
	XMLSubdir             string            `yaml:"xml_subdir,omitempty"`
	Predefined            []string          `yaml:"predefined,omitempty"`
	Directive             string            `yaml:"directive,omitempty"`
	DomainByExtension     map[string]string `yaml:"domain_by_extension,omitempty"`
	IDAttributes          []string          `yaml:"id_attributes,omitempty"`
	ShowDefineInitializer bool              `yaml:"show_define_initializer,omitempty"`
}

// PackageDocsConfig drives the companion R package documentation build.
// Paths are relative to the repository root.
type PackageDocsConfig struct {
	BuildScript   string `yaml:"build_script,omitempty"`
	Tarball       string `yaml:"tarball,omitempty"`
	PkgdownDir    string `yaml:"pkgdown_dir,omitempty"`
	StagingDir    string `yaml:"staging_dir,omitempty"`
	SiteDir       string `yaml:"site_dir,omitempty"`
	OutputSubpath string `yaml:"output_subpath,omitempty"`
	RLibs         string `yaml:"r_libs,omitempty"`
	Tar           string `yaml:"tar,omitempty"`
	Seed          int    `yaml:"seed,omitempty"`
}

// GeneratorsConfig names the external executables and their extra environment.
type GeneratorsConfig struct {
	Doxygen string            `yaml:"doxygen,omitempty"`
	Shell   string            `yaml:"shell,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// MetricsConfig enables writing a Prometheus textfile after each build.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// NotifyConfig enables publishing build-finished events to NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	baseDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve config directory").Fatal().Build()
	}
	loadEnvFile(baseDir)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").Fatal().
			WithContext("path", configPath).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.baseDir = baseDir
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates the result.
// The base directory is the current working directory until Load sets it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.baseDir = "."
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.Project = ProjectConfig{
		Name:            "LightGBM",
		Author:          "Microsoft Corporation",
		CopyrightHolder: "Microsoft Corporation",
		MasterDoc:       "index",
		VersionFile:     "VERSION.txt",
	}
	example.Theme = ThemeConfig{
		Name:    "rtd",
		Logo:    "logo/LightGBM_logo_grey_text.svg",
		Favicon: "_static/images/favicon.ico",
		Options: map[string]any{"includehidden": false, "logo_only": true},
	}
	example.APIDocs.Project = example.Project.Name
	example.APIDocs.IDAttributes = []string{"LIGHTGBM_C_EXPORT"}
	example.APIDocs.ShowDefineInitializer = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}

// loadEnvFile loads the first of .env/.env.local found next to the config file.
// godotenv never overrides variables already present in the process environment.
func loadEnvFile(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load environment file", "path", p, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", p)
		return
	}
}

// BaseDir returns the directory the configuration was loaded from.
func (c *Config) BaseDir() string { return c.baseDir }

// WithBaseDir returns a copy of the configuration rooted at dir.
func (c *Config) WithBaseDir(dir string) *Config {
	cp := *c
	cp.baseDir = dir
	return &cp
}

// DocsPath is the documentation source root.
func (c *Config) DocsPath() string { return c.resolve(c.baseDir, c.Paths.DocsDir) }

// RepoRootPath is the repository root holding the native sources and VERSION.txt.
func (c *Config) RepoRootPath() string { return c.resolve(c.DocsPath(), c.Paths.RepoRoot) }

// OutputPath is where rendered pages are written.
func (c *Config) OutputPath() string { return c.resolve(c.DocsPath(), c.Paths.OutputDir) }

// MarkerPath is the first-run marker file.
func (c *Config) MarkerPath() string { return c.resolve(c.DocsPath(), c.Paths.Marker) }

// StaticPaths are copied verbatim into the output directory.
func (c *Config) StaticPaths() []string {
	out := make([]string, 0, len(c.Paths.StaticDirs))
	for _, d := range c.Paths.StaticDirs {
		out = append(out, c.resolve(c.DocsPath(), d))
	}
	return out
}

// APIHeaderPath is the C header handed to the symbol extractor.
func (c *Config) APIHeaderPath() string { return c.resolve(c.RepoRootPath(), c.APIDocs.Header) }

// APIOutputPath is the symbol extractor's output directory.
func (c *Config) APIOutputPath() string { return c.resolve(c.DocsPath(), c.APIDocs.OutputDir) }

// APIXMLPath is the XML tree consumed by the API-doc directive.
func (c *Config) APIXMLPath() string {
	return filepath.Join(c.APIOutputPath(), c.APIDocs.XMLSubdir)
}

// PackageSitePath is the prebuilt package documentation copied after the build.
func (c *Config) PackageSitePath() string {
	return c.resolve(c.RepoRootPath(), c.PackageDocs.SiteDir)
}

func (c *Config) resolve(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Engine.SourceSuffix, ".") || len(c.Engine.SourceSuffix) < 2 {
		return errors.ConfigError("engine.source_suffix must start with '.'").
			WithContext("value", c.Engine.SourceSuffix).Build()
	}
	if !strings.HasPrefix(c.Engine.OutputSuffix, ".") || len(c.Engine.OutputSuffix) < 2 {
		return errors.ConfigError("engine.output_suffix must start with '.'").
			WithContext("value", c.Engine.OutputSuffix).Build()
	}
	if c.Engine.SourceSuffix == c.Engine.OutputSuffix {
		return errors.ConfigError("engine.source_suffix and engine.output_suffix must differ").Build()
	}
	if c.Engine.LinkRewritePriority < 0 || c.Engine.LinkRewritePriority > 999 {
		return errors.ConfigError("engine.link_rewrite_priority must be within 0..999").
			WithContext("value", c.Engine.LinkRewritePriority).Build()
	}
	sub := filepath.Clean(c.PackageDocs.OutputSubpath)
	if filepath.IsAbs(sub) || sub == "." || strings.HasPrefix(sub, "..") {
		return errors.ConfigError("package_docs.output_subpath must be a relative path inside the output directory").
			WithContext("value", c.PackageDocs.OutputSubpath).Build()
	}
	if strings.ContainsAny(c.APIDocs.Directive, " \t{}") {
		return errors.ConfigError("api_docs.directive must be a bare name").
			WithContext("value", c.APIDocs.Directive).Build()
	}
	return nil
}
