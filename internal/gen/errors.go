package gen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEndpointNotFound matches any NotFoundError via errors.Is.
var ErrEndpointNotFound = errors.New("gen: endpoint not found")

// ErrSchemaDepth matches any DepthError via errors.Is.
var ErrSchemaDepth = errors.New("gen: schema nesting too deep")

// NotFoundError reports a (path, method) pair absent from the service model.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("endpoint not found: %s %s", strings.ToUpper(e.Method), e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrEndpointNotFound }

// DepthError reports synthesis descending past the configured depth limit,
// which indicates a $ref chain or mutually recursive schema graph.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("schema nesting exceeds depth limit %d (cyclic $ref graph?)", e.Limit)
}

func (e *DepthError) Is(target error) bool { return target == ErrSchemaDepth }
