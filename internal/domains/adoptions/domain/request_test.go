package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	score := 82.0
	req, err := NewRequest("r-1", "u-1", "a-1", "  I have a big yard  ", &score)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, "I have a big yard", req.Message)
	assert.Equal(t, "", req.ShelterNotes)
	require.NotNil(t, req.CompatibilityScore)
	assert.Equal(t, 82.0, *req.CompatibilityScore)

	score = 10
	assert.Equal(t, 82.0, *req.CompatibilityScore, "score is copied")
}

func TestNewRequest_Validation(t *testing.T) {
	_, err := NewRequest("r-1", "", "a-1", "", nil)
	assert.ErrorIs(t, err, ErrEmptyUser)

	_, err = NewRequest("r-1", "u-1", " ", "", nil)
	assert.ErrorIs(t, err, ErrEmptyAnimal)

	bad := 120.0
	_, err = NewRequest("r-1", "u-1", "a-1", "", &bad)
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     error
	}{
		{StatusPending, StatusApproved, nil},
		{StatusPending, StatusCompleted, nil},
		{StatusPending, StatusRejected, nil},
		{StatusPending, StatusPending, nil},
		{StatusApproved, StatusRejected, ErrTerminalStatus},
		{StatusRejected, StatusPending, ErrTerminalStatus},
		{StatusCompleted, StatusApproved, ErrTerminalStatus},
		{StatusPending, Status("cancelled"), ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			err := CanTransition(tc.from, tc.to)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecide_RecordsNotes(t *testing.T) {
	req, err := NewRequest("r-1", "u-1", "a-1", "", nil)
	require.NoError(t, err)

	require.NoError(t, req.Decide(StatusRejected, "not a fit"))
	assert.Equal(t, StatusRejected, req.Status)
	assert.Equal(t, "not a fit", req.ShelterNotes)

	assert.ErrorIs(t, req.Decide(StatusApproved, ""), ErrTerminalStatus)
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusApproved.Finalizes())
	assert.True(t, StatusCompleted.Finalizes())
	assert.False(t, StatusRejected.Finalizes())
	assert.False(t, StatusPending.Terminal())

	status, err := ParseStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)
	_, err = ParseStatus("unknown")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
