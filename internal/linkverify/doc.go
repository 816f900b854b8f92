// Package linkverify checks that the internal links of a rendered site
// resolve to existing pages, assets and anchors.
package linkverify
