package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalid("bad input"), 400},
		{ErrUnauthorized("invalid credentials"), 401},
		{ErrForbidden("forbidden"), 403},
		{ErrNotFound("missing"), 404},
		{ErrConflict("duplicate"), 409},
		{ErrInternal("boom"), 500},
		{errors.New("plain error"), 500},
		{fmt.Errorf("wrapped: %w", ErrConflict("dup")), 409},
	}
	for _, tt := range tests {
		if got := ToHTTPStatus(tt.err); got != tt.want {
			t.Errorf("ToHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(ErrConflict("username already exists")); got != "username already exists" {
		t.Errorf("Message = %q", got)
	}
	// 内部エラーの詳細はクライアントに漏らさない
	if got := Message(errors.New("dial tcp 127.0.0.1:3306: connection refused")); got != "server error" {
		t.Errorf("Message leaked internal detail: %q", got)
	}
	if got := Message(ErrInternal("sql broke")); got != "server error" {
		t.Errorf("Message leaked internal detail: %q", got)
	}
}
