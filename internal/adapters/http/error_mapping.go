package httpadapter

import (
	"net/http"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidQuery), domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrArticleNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrEncodingUnavailable),
		domain.IsKind(err, domain.ErrRetrievalUnavailable),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
