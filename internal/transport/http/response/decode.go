package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/imedia765/a-051853/internal/domain"
)

// Dashboard payloads are a handful of short fields.
const maxBodyBytes = 64 << 10

var errTrailingData = errors.New("body must contain a single JSON object")

// DecodeJSON strictly decodes the request body into dst: unknown fields,
// oversize bodies and trailing values are all invalid_json.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}
	switch err := dec.Decode(&json.RawMessage{}); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return domain.ErrInvalidJSON(err)
	default:
		return domain.ErrInvalidJSON(errTrailingData)
	}
}
