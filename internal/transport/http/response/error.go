package response

import (
	"errors"
	"net/http"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuth:           http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindBusiness:       http.StatusUnprocessableEntity,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindUpstream:       http.StatusBadGateway,
	domain.KindInfrastructure: http.StatusServiceUnavailable,
}

func statusFromKind(kind domain.ErrKind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteError renders err as the JSON error body. Anything that is not a
// *domain.Error becomes a 500 without details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	payload := ErrorPayload{
		Code:      "internal_error",
		Message:   "internal error",
		RequestID: appCtx.GetRequestID(r.Context()),
	}
	status := http.StatusInternalServerError

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		payload.Code, payload.Message, payload.Meta = de.Code, de.Message, de.Meta
	}

	lg := logger.WithCtx(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		lg.Error().Err(err).Int("status", status).Str("code", payload.Code).Msg("request failed")
	case status == http.StatusBadGateway || de != nil && de.Kind == domain.KindBusiness:
		lg.Warn().Err(err).Int("status", status).Str("code", payload.Code).Msg("request rejected")
	}

	WriteJSON(w, status, ErrorBody{Error: payload})
}
