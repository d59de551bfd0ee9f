// Package shared provides common utilities and test helpers used across the
// codebase. It serves as a central location for shared functionality that
// doesn't belong to any specific domain or architectural layer.
//
// # Structure
//
// - testutil: Testing utilities such as the buffered slog handler used to
//   assert on structured log output
//
// # Usage Guidelines
//
// This package should only contain:
//
//  1. Test utilities used by multiple packages
//  2. Generic helper functions with no domain-specific logic
//  3. Common constants or types used across packages
//
// It should NOT contain business logic, external dependencies beyond the
// standard library, or circular dependencies with other internal packages.
package shared
