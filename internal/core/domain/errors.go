package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery         = errors.New("invalid query")
	ErrEncodingUnavailable  = errors.New("encoding unavailable")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrRerankUnavailable    = errors.New("rerank unavailable")
	ErrGeneration           = errors.New("generation failed")
	ErrCacheIO              = errors.New("cache io failure")
	ErrArticleNotFound      = errors.New("article not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
