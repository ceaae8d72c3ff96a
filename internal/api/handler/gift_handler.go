package handler

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/pkg/response"
	"Shiftline/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type GiftHandler struct {
	giftSvc service.GiftService
}

func NewGiftHandler(giftSvc service.GiftService) *GiftHandler {
	return &GiftHandler{giftSvc: giftSvc}
}

// StartHandoff 聊天/好友流程内发起送礼，写入交接槽
func (s *GiftHandler) StartHandoff(c *gin.Context) {
	var req dto.GiftHandoffReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	userID := c.GetUint64("user_id")
	s.giftSvc.StartHandoff(userID, &req)
	response.Success(c, nil)
}

// Landing 礼物落地页入口，返回本次下单解析出的收件人
func (s *GiftHandler) Landing(c *gin.Context) {
	var req dto.GiftLandingReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	userID := c.GetUint64("user_id")
	receiver := s.giftSvc.Landing(userID, &req)
	response.Success(c, receiver)
}

// GetGiftDetail 礼物详情透传
func (s *GiftHandler) GetGiftDetail(c *gin.Context) {
	giftID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || giftID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	token := c.GetString("token")

	detail, err := s.giftSvc.Detail(c.Request.Context(), token, giftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}
