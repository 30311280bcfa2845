package target

import (
	"errors"
	"strings"
)

// ErrIndexRequired is returned when a target is created without an index name.
var ErrIndexRequired = errors.New("index name is required")

// Descriptor names the index and document type a request defaults to.
// Target and every search model implement it.
type Descriptor interface {
	IndexName() string
	DocumentType() string
}

// Target identifies the index and document type a model searches against.
type Target struct {
	indexName    string
	documentType string
}

// New creates a target descriptor. documentType may be empty for typeless indices.
func New(indexName, documentType string) (Target, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return Target{}, ErrIndexRequired
	}
	return Target{
		indexName:    indexName,
		documentType: strings.TrimSpace(documentType),
	}, nil
}

// MustNew calls New and panics on error.
func MustNew(indexName, documentType string) Target {
	t, err := New(indexName, documentType)
	if err != nil {
		panic(err)
	}
	return t
}

// IndexName returns the default index name.
func (t Target) IndexName() string { return t.indexName }

// DocumentType returns the default document type.
func (t Target) DocumentType() string { return t.documentType }

// String returns "index/type", or just the index for typeless targets.
func (t Target) String() string {
	if t.documentType == "" {
		return t.indexName
	}
	return t.indexName + "/" + t.documentType
}
