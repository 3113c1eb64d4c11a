// Package sanitizer provides input normalization for listing data.
//
// All normalization functions are idempotent - applying them multiple
// times produces the same result. Invalid input is handled gracefully,
// typically by returning empty strings or empty slices rather than
// errors.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Image references: resolve relative paths against a base URL,
//     pass absolute URLs through unchanged
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
