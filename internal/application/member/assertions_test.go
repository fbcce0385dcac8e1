package member

import (
	"errors"
	"testing"

	"github.com/imedia765/a-051853/internal/domain"
)

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *domain.Error code=%q, got %T (%v)", code, err, err)
	}
	if de.Code != code {
		t.Fatalf("expected code=%q, got %q (%v)", code, de.Code, err)
	}
}

func asDomainErr(err error) *domain.Error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}
