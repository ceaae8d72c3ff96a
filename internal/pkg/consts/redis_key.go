package consts

const (
	IMRoomKey = "im:room:"
)
