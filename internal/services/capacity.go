package services

const (
	MaxRoomsPerWorkspace     = 10
	MaxActiveMeetingsPerRoom = 3
	MaxWorkspaceMembers      = 10
)

func checkRoomCapacity(rooms int64) error {
	if rooms >= MaxRoomsPerWorkspace {
		return newError(KindCapacityExceeded, "workspace room limit of %d reached", MaxRoomsPerWorkspace)
	}
	return nil
}

func checkMeetingCapacity(activeMeetings int64) error {
	if activeMeetings >= MaxActiveMeetingsPerRoom {
		return newError(KindCapacityExceeded, "room meeting limit of %d concurrent meetings reached", MaxActiveMeetingsPerRoom)
	}
	return nil
}

// checkMemberCapacity counts pending invitations as members.
func checkMemberCapacity(members, pending int64) error {
	if members+pending >= MaxWorkspaceMembers {
		return newError(KindCapacityExceeded, "workspace member limit of %d reached (including pending invitations)", MaxWorkspaceMembers)
	}
	return nil
}
