// Package apidoc renders C-API reference sections from the XML written by the
// symbol extractor. It provides the doxygenfile directive used in pages:
//
//	```{doxygenfile} c_api.h
//	:project: LightGBM
//	```
package apidoc
