// Package hcl provides the HCL implementation of config.Loader. It parses
// sweep files with hclparse, decodes their blocks with gohcl and turns
// parameter value lists of any primitive type into string candidates with
// go-cty.
package hcl
