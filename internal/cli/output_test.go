package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/moviereview/review"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", nil)))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "bad", nil))))
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "bad", WrapExitError(ExitFailure, "bad", nil).Error())
	assert.Equal(t, "bad: boom", WrapExitError(ExitFailure, "bad", errors.New("boom")).Error())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: 0", review.ErrInvalidRating), ErrCodeInvalidRating},
		{review.ErrTitleTooLong, ErrCodeTitleTooLong},
		{review.ErrDescriptionTooLong, ErrCodeDescriptionTooLong},
		{review.ErrAlreadyExists, ErrCodeAlreadyExists},
		{review.ErrNotFound, ErrCodeNotFound},
		{review.ErrConcurrentModification, ErrCodeConcurrentModified},
		{review.ErrInvalidRecord, ErrCodeInvalidRecord},
		{errors.New("disk full"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorCode(tt.err), "errorCode(%v)", tt.err)
	}
}

func TestFail_ExitCodes(t *testing.T) {
	f := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}

	assert.Equal(t, ExitFailure, GetExitCode(f.Fail("create review", review.ErrAlreadyExists)))
	assert.Equal(t, ExitCommandError, GetExitCode(f.Fail("create review", errors.New("disk full"))))

	var exitErr *ExitError
	require.ErrorAs(t, f.Fail("get review", review.ErrNotFound), &exitErr)
	assert.True(t, exitErr.Reported)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeNotFound, "missing"))
	assert.Equal(t, "Error [E_NOT_FOUND]: missing\n", buf.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"reserved": 119}))
	assert.JSONEq(t, `{"status":"ok","data":{"reserved":119}}`, buf.String())

	buf.Reset()
	require.NoError(t, f.Error(ErrCodeNotFound, "missing"))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E_NOT_FOUND","message":"missing"}}`, buf.String())
}
