// Package fixture provides declarative test fixtures with dependency ordering.
//
// It offers:
// - fixture registration by name with generic Definition and typed values
// - dependency closure discovery for a requested set of fixtures
// - deterministic topological setup order with cycle detection
// - reverse-order teardown and rollback of partially set up fixtures
// - graph export (DOT and Mermaid) of the planned setup
package fixture
