package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	assert.True(t, errors.Is(ErrMeetingEnded, ErrInvalidState))
	assert.True(t, errors.Is(ErrMeetingEnded, ErrMeetingEnded))
	assert.False(t, errors.Is(ErrInvalidState, ErrMeetingEnded))
	assert.False(t, errors.Is(ErrInvalidRoomType, ErrMeetingEnded))
	assert.False(t, errors.Is(ErrNotFound, ErrForbidden))

	wrapped := fmt.Errorf("create: %w", notFound("room"))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "room not found", notFound("room").Error())
	assert.Equal(t, "invalid_state: meeting_ended", ErrMeetingEnded.Error())
	assert.Equal(t, "forbidden", ErrForbidden.Error())
}

func TestCapacityGuards(t *testing.T) {
	assert.NoError(t, checkRoomCapacity(9))
	assert.ErrorIs(t, checkRoomCapacity(10), ErrCapacityExceeded)
	assert.ErrorContains(t, checkRoomCapacity(10), "10")

	assert.NoError(t, checkMeetingCapacity(2))
	assert.ErrorIs(t, checkMeetingCapacity(3), ErrCapacityExceeded)
	assert.ErrorContains(t, checkMeetingCapacity(3), "3")

	assert.NoError(t, checkMemberCapacity(9, 0))
	assert.ErrorIs(t, checkMemberCapacity(5, 5), ErrCapacityExceeded)
	assert.ErrorContains(t, checkMemberCapacity(10, 0), "10")
}
