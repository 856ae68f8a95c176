package types

import "errors"

// Every message carries the "geodeform:" prefix. Packages wrap these with
// fmt.Errorf("context: %w", ErrX) and callers match with errors.Is.
var (
	// ErrMalformedMesh is returned when a face list is not a valid triangulated
	// 2-manifold: out of range vertex indices, degenerate triangles, edges
	// shared by more than two triangles, duplicated half-edges or corner rings
	// that do not close.
	ErrMalformedMesh = errors.New("geodeform: malformed mesh")

	// ErrInvalidAttribute is returned when a horizon/fault attribute set does
	// not match the mesh it labels.
	ErrInvalidAttribute = errors.New("geodeform: invalid attribute")

	// ErrInvalidArgument covers caller supplied values: negative constraint
	// constants, missing input files, unusable output directories.
	ErrInvalidArgument = errors.New("geodeform: invalid argument")
)
