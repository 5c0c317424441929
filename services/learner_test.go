package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_MintsIdentifier(t *testing.T) {
	ts := newTestServices(t)

	resolved, err := ts.learner.Resolve("")
	require.NoError(t, err)

	assert.True(t, resolved.IsNew)
	_, err = uuid.Parse(resolved.LearnerID)
	assert.NoError(t, err, "minted identifier should be a valid UUID")
}

func TestResolve_ExistingIdentifierIsIdempotent(t *testing.T) {
	ts := newTestServices(t)
	id := uuid.New().String()

	first, err := ts.learner.Resolve(id)
	require.NoError(t, err)
	assert.True(t, first.IsNew)
	assert.Equal(t, id, first.LearnerID)

	second, err := ts.learner.Resolve(id)
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, id, second.LearnerID)
}

func TestResolve_UnknownButWellFormedIsAccepted(t *testing.T) {
	ts := newTestServices(t)

	// Never seen before, but well-formed: the resolver persists it rather
	// than rejecting it.
	id := "0c06a0ab-3d1c-4bb9-a333-4b772e8e6b0e"
	resolved, err := ts.learner.Resolve(id)
	require.NoError(t, err)
	assert.True(t, resolved.IsNew)

	learner, err := ts.sql.GetLearner(id)
	require.NoError(t, err)
	assert.Equal(t, id, learner.ID)
}

func TestResolve_MalformedIdentifierRejected(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.learner.Resolve("not-a-uuid")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)
}
