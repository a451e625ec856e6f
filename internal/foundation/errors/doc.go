// Package errors provides the classified error primitives used across sitebuilder.
//
// Every failure that crosses a package boundary in the build pipeline is a
// ClassifiedError: it carries a category (frontmatter, filesystem, layout, ...),
// a severity, a retry strategy and structured context such as the offending
// source path. The underlying cause stays reachable through Unwrap so package
// sentinels keep working with errors.Is.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFrontmatter, "invalid frontmatter").
//		WithContext("source", path).
//		Build()
package errors
