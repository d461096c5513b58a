package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{Validation("x"), http.StatusBadRequest},
		{RateLimited("x"), http.StatusTooManyRequests},
		{Internal("x"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("inner")), http.StatusNotFound},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := Validation("bad input %d", 7)
	if !IsCode(err, CodeValidation) {
		t.Fatalf("expected validation code")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("unexpected not found code")
	}
	if err.Error() != "bad input 7" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	wrapped := fmt.Errorf("ctx: %w", err)
	if !IsCode(wrapped, CodeValidation) {
		t.Fatalf("expected code through wrapping")
	}
	if IsCode(stderrors.New("plain"), CodeValidation) {
		t.Fatalf("plain error must not match")
	}
}
