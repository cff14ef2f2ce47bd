package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"advisor-api/pkg/advisor"
	"advisor-api/pkg/llm"
	"advisor-api/pkg/marketdata"
)

type errorBody struct {
	Error string `json:"error"`
}

// SetupErrorHandler maps domain errors onto HTTP statuses for every route.
func SetupErrorHandler() {
	httpx.SetErrorHandlerCtx(func(ctx context.Context, err error) (int, any) {
		return statusFor(err), errorBody{Error: err.Error()}
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, advisor.ErrInvalidRequest),
		errors.Is(err, advisor.ErrAssetUnderspecified):
		return http.StatusBadRequest
	case errors.Is(err, advisor.ErrConversationNotFound),
		errors.Is(err, marketdata.ErrQuoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrAllProvidersUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, advisor.ErrParseFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
