package password

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
)

// remoteMessager is implemented by transport errors that carry the backend's own wording.
type remoteMessager interface {
	RemoteMessage() string
}

// wrongCurrentPassword reports whether a backend message means the current password was rejected.
func wrongCurrentPassword(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "current password") ||
		strings.Contains(m, "invalid credentials") ||
		strings.Contains(m, "invalid login credentials")
}

// classifyCallError turns a failed procedure call into a remote error. The
// member sees the backend's wording when it sent some, otherwise the
// client-safe message of a wrapped domain error.
func classifyCallError(err error) *domain.Error {
	msg := err.Error()
	var rm remoteMessager
	if errors.As(err, &rm) && rm.RemoteMessage() != "" {
		msg = rm.RemoteMessage()
	}
	if wrongCurrentPassword(msg) {
		return domain.ErrCurrentPasswordIncorrect(err)
	}

	de := domain.ErrRemote(err)
	var inner *domain.Error
	switch {
	case rm != nil && rm.RemoteMessage() != "":
		de.Message = rm.RemoteMessage()
	case errors.As(err, &inner):
		de.Message = inner.Message
	}
	return de
}

// classifyPayload validates the procedure's answer. A nil return means success.
func classifyPayload(raw json.RawMessage) *domain.Error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		if err == nil {
			err = errors.New("payload is not an object")
		}
		return domain.ErrProtocol(err)
	}

	rawSuccess, ok := obj["success"]
	if !ok {
		return domain.ErrProtocol(errors.New("payload has no success field"))
	}
	var success *bool
	if err := json.Unmarshal(rawSuccess, &success); err != nil {
		return domain.ErrProtocol(err)
	}
	if success == nil {
		return domain.ErrProtocol(errors.New("success is null"))
	}
	if *success {
		return nil
	}

	reason := stringField(obj, "error")
	if reason == "" {
		reason = stringField(obj, "message")
	}
	code := stringField(obj, "code")

	de := domain.ErrBusiness(code, reason)
	if wrongCurrentPassword(reason) {
		de = domain.ErrCurrentPasswordIncorrect(errors.New(reason))
	}

	meta := map[string]string{}
	if code != "" {
		meta["remote_code"] = code
	}
	if lu := stringField(obj, "locked_until"); lu != "" {
		meta["locked_until"] = lu
	}
	if len(meta) > 0 {
		de = domain.WithMeta(de, meta)
	}
	return de
}

// stringField reads key as a string, ignoring values of any other type.
func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
