package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorCollectsAllIssues(t *testing.T) {
	verr := &ValidationError{}
	require.NoError(t, verr.OrNil())

	verr.Add("firstName", "First name is required")
	verr.Add("email", "Invalid email address")

	err := verr.OrNil()
	require.Error(t, err)
	assert.Equal(t, "validation failed: firstName: First name is required; email: Invalid email address", err.Error())

	var target *ValidationError
	require.True(t, errors.As(fmt.Errorf("leads: create: %w", err), &target))
	assert.Len(t, target.Issues, 2)
}

func TestNilValidationErrorOrNil(t *testing.T) {
	var verr *ValidationError
	assert.NoError(t, verr.OrNil())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "lead not found: 123", NotFound("lead", "123").Error())
	assert.Equal(t, "No lead found with email: a@b.com", (&NotFoundError{Message: "No lead found with email: a@b.com"}).Error())
	assert.Equal(t, `abm page with linkedinIdentifier "abc" already exists`, Conflict("abm page", "linkedinIdentifier", "abc").Error())
	assert.Equal(t, "unauthorized", (&UnauthorizedError{}).Error())
	assert.Equal(t, "unauthorized: bad secret", (&UnauthorizedError{Reason: "bad secret"}).Error())
}

func TestDependencyWrapsCause(t *testing.T) {
	cause := errors.New("503 from provider")
	err := Dependency("sendgrid", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sendgrid: 503 from provider", err.Error())

	assert.NoError(t, Dependency("sendgrid", nil))
}
