package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeOutOfRange   = errors.New("node id out of range")
	ErrPropertyNotFound = errors.New("property not found")
	ErrGraphNotFound    = errors.New("graph not found")
	ErrGraphExists      = errors.New("graph already exists")
	ErrInvalidWeight    = errors.New("invalid relationship weight")
	ErrMalformedInput   = errors.New("malformed input")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op       string // Operation that failed (e.g., "project", "addRelationship")
	Entity   string // Entity type (e.g., "node", "relationship", "graph")
	ID       int64  // Entity ID, valid when HasID is set
	HasID    bool
	Property string // Property name for property lookups
	Cause    error
	Context  string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	switch {
	case e.HasID && e.Property != "":
		return fmt.Sprintf("%s %s %d (property %s): %v", e.Op, e.Entity, e.ID, e.Property, e.Cause)
	case e.HasID:
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Cause)
	case e.Property != "":
		return fmt.Sprintf("%s %s (property %s): %v", e.Op, e.Entity, e.Property, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building GraphErrors.
type ErrorBuilder struct {
	err GraphError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: GraphError{Op: op}}
}

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id int64) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	b.err.HasID = true
	return b
}

// Entity sets the entity type without an ID.
func (b *ErrorBuilder) Entity(entity string) *ErrorBuilder {
	b.err.Entity = entity
	return b
}

// Relationship sets the entity to "relationship".
func (b *ErrorBuilder) Relationship() *ErrorBuilder {
	b.err.Entity = "relationship"
	return b
}

// Graph sets the entity to "graph" with the name as context.
func (b *ErrorBuilder) Graph(name string) *ErrorBuilder {
	b.err.Entity = "graph"
	b.err.Context = name
	return b
}

// Property sets the property name.
func (b *ErrorBuilder) Property(name string) *ErrorBuilder {
	b.err.Property = name
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed GraphError.
func (b *ErrorBuilder) Build() *GraphError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// NodeOutOfRangeError reports a node id outside [0, nodeCount).
func NodeOutOfRangeError(op string, nodeID, nodeCount int64) error {
	return NewError(op).Node(nodeID).
		Cause(fmt.Errorf("%w: node count is %d", ErrNodeOutOfRange, nodeCount)).Err()
}

// NodePropertyNotFoundError reports a missing node property.
func NodePropertyNotFoundError(op, property string) error {
	return NewError(op).Entity("node").Property(property).Cause(ErrPropertyNotFound).Err()
}

// RelationshipPropertyNotFoundError reports a missing relationship property.
func RelationshipPropertyNotFoundError(op, property string) error {
	return NewError(op).Relationship().Property(property).Cause(ErrPropertyNotFound).Err()
}

// GraphNotFoundError reports an unknown catalog entry.
func GraphNotFoundError(name string) error {
	return NewError("get").Graph(name).Cause(ErrGraphNotFound).Err()
}
