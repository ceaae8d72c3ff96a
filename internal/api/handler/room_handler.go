package handler

import (
	"Shiftline/internal/pkg/response"
	"Shiftline/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	dirSvc service.DirectoryService
}

func NewRoomHandler(dirSvc service.DirectoryService) *RoomHandler {
	return &RoomHandler{dirSvc: dirSvc}
}

// GetRoomList 当前用户的房间目录，按最近消息时间降序
func (s *RoomHandler) GetRoomList(c *gin.Context) {
	userID := c.GetUint64("user_id")
	token := c.GetString("token")

	rows, err := s.dirSvc.List(c.Request.Context(), userID, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rows)
}

// GetRoomRecord 按成员记录 ID 查单条目录行
func (s *RoomHandler) GetRoomRecord(c *gin.Context) {
	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || membershipID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	token := c.GetString("token")

	row, err := s.dirSvc.Record(c.Request.Context(), token, membershipID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, row)
}
