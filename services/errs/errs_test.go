package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, InvalidInput, KindOf(Invalid("bad %s", "pid")))
	assert.Equal(t, SecurityViolation, KindOf(fmt.Errorf("wrapped: %w", Security("nope"))))
	assert.Equal(t, Generic, KindOf(errors.New("plain")))
	assert.Equal(t, CancellationRequested, KindOf(context.Canceled))
	assert.Equal(t, CancellationRequested, KindOf(Cancelled("clone")))
	assert.True(t, errors.Is(Cancelled("clone"), context.Canceled))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(Generic, cause, "request failed")

	assert.Equal(t, "request failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestToStatus(t *testing.T) {
	cases := map[Kind]codes.Code{
		InvalidInput:          codes.InvalidArgument,
		SecurityViolation:     codes.FailedPrecondition,
		RateLimitExceeded:     codes.ResourceExhausted,
		PermissionDenied:      codes.PermissionDenied,
		AuthExhausted:         codes.Unauthenticated,
		CancellationRequested: codes.Canceled,
		Generic:               codes.Unknown,
	}
	for kind, want := range cases {
		st, ok := status.FromError(ToStatus(New(kind, "msg")))
		assert.True(t, ok)
		assert.Equal(t, want, st.Code(), kind.String())
		assert.Equal(t, "msg", st.Message())
	}

	assert.NoError(t, ToStatus(nil))

	orig := status.Error(codes.NotFound, "missing")
	assert.Equal(t, orig, ToStatus(orig))
}
