package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/de-tools/iam-audit/pkg/models/domain"
)

var (
	// ErrEmptySource is returned when the input contains no bytes at all
	ErrEmptySource = errors.New("account source is empty")
	// ErrNoHeader is returned when the input has no usable header row
	ErrNoHeader = errors.New("account source has no header row")
	// ErrUnsupportedScheme is returned for source URIs nobody registered a factory for
	ErrUnsupportedScheme = errors.New("unsupported source scheme")
)

// ParseWarning represents a non-fatal issue encountered while reading the source
type ParseWarning struct {
	Row     int
	Message string
}

// ParseResult contains the parsed records alongside any warnings
type ParseResult struct {
	Records  []domain.AccountRecord
	Warnings []ParseWarning
}

// Source supplies the ordered account snapshot for an audit run
type Source interface {
	Load(ctx context.Context) (*ParseResult, error)
}

// SourceFactory creates a Source for a location such as a path or s3://bucket/key
type SourceFactory func(ctx context.Context, location string) (Source, error)

// Registry resolves source locations to sources by URI scheme
type Registry interface {
	// Register adds a factory for a URI scheme
	Register(scheme string, factory SourceFactory) error
	// Open creates a source for the location; locations without a scheme use "file"
	Open(ctx context.Context, location string) (Source, error)
	// ListSchemes returns the registered schemes
	ListSchemes() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
}

// NewRegistry creates a registry seeded with the given factories
func NewRegistry(factories map[string]SourceFactory) Registry {
	r := &registry{
		factories: make(map[string]SourceFactory, len(factories)),
	}
	for scheme, f := range factories {
		r.factories[scheme] = f
	}
	return r
}

// NewDefaultRegistry returns a registry able to open local files and S3 objects
func NewDefaultRegistry() Registry {
	return NewRegistry(map[string]SourceFactory{
		SchemeFile: FileSourceFactory,
		SchemeS3:   S3SourceFactory,
	})
}

func (r *registry) Register(scheme string, factory SourceFactory) error {
	if scheme == "" {
		return fmt.Errorf("scheme cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[scheme]; exists {
		return fmt.Errorf("scheme %q is already registered", scheme)
	}

	r.factories[scheme] = factory
	return nil
}

func (r *registry) Open(ctx context.Context, location string) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("source location cannot be empty")
	}

	scheme := SchemeFile
	if i := strings.Index(location, "://"); i > 0 {
		scheme = strings.ToLower(location[:i])
	}

	r.mu.RLock()
	factory, exists := r.factories[scheme]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	return factory(ctx, location)
}

func (r *registry) ListSchemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.factories))
	for scheme := range r.factories {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}
