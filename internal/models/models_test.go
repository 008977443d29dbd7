package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomTypes(t *testing.T) {
	cases := []struct {
		roomType RoomType
		kind     ArtifactKind
		hosts    bool
		session  bool
	}{
		{RoomDocument, KindDocument, false, false},
		{RoomCode, KindCode, false, false},
		{RoomWhiteboard, KindWhiteboard, false, true},
		{RoomKanban, KindKanban, false, false},
		{RoomSpreadsheet, KindSpreadsheet, false, false},
		{RoomConference, "", true, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.roomType), func(t *testing.T) {
			parsed, ok := ParseRoomType(string(tc.roomType))
			require.True(t, ok)
			assert.Equal(t, tc.roomType, parsed)

			kind, ok := parsed.ArtifactKind()
			assert.Equal(t, tc.kind != "", ok)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.hosts, parsed.HostsMeetings())
			assert.Equal(t, tc.session, parsed.HasRoomSession())
		})
	}

	_, ok := ParseRoomType("voice")
	assert.False(t, ok)
}

func TestSessionIDs(t *testing.T) {
	id := uuid.MustParse("0b5f3c2e-9d1a-4c8e-b7f6-2a3d4e5f6a7b")

	assert.Equal(t, "code:0b5f3c2e-9d1a-4c8e-b7f6-2a3d4e5f6a7b", (&Artifact{ID: id, Kind: KindCode}).SessionID())
	assert.Equal(t, "room:0b5f3c2e-9d1a-4c8e-b7f6-2a3d4e5f6a7b", (&Room{ID: id}).SessionID())

	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "meeting_0b5f3c2e-9d1a-4c8e-b7f6-2a3d4e5f6a7b_1700000000123", MeetingSessionName(id, at))
}

func TestDefaultKanbanBoard(t *testing.T) {
	board, err := ParseKanbanBoard(KindKanban.DefaultContent())
	require.NoError(t, err)

	require.Len(t, board.Columns, 3)
	assert.Equal(t, []string{"todo", "in-progress", "done"},
		[]string{board.Columns[0].ID, board.Columns[1].ID, board.Columns[2].ID})
	for _, col := range board.Columns {
		assert.NotNil(t, col.Cards)
		assert.Empty(t, col.Cards)
	}

	assert.JSONEq(t, `{"rows":50,"cols":26,"cells":{}}`, KindSpreadsheet.DefaultContent())
	assert.Empty(t, KindCode.DefaultContent())
}

func TestSortedPair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")

	low, high := SortedPair(a, b)
	assert.Equal(t, a, low)
	assert.Equal(t, b, high)

	low, high = SortedPair(b, a)
	assert.Equal(t, a, low)
	assert.Equal(t, b, high)

	ch := Channel{DirectLow: &low, DirectHigh: &high}
	assert.True(t, ch.HasParticipant(a))
	assert.False(t, ch.HasParticipant(uuid.New()))
	assert.False(t, (&Channel{}).HasParticipant(a))
}
