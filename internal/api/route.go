package api

import (
	"Shiftline/internal/api/middleware"
	"Shiftline/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		// WS 信令入口：token 走查询参数，握手内部自行鉴权
		imGroup := apiGroup.Group("/im")
		{
			imGroup.GET("", group.WsHandler.Connect)
		}

		roomGroup := apiGroup.Group("/chatroom")
		roomGroup.Use(middleware.AuthMiddleware())
		{
			roomGroup.GET("/list", group.RoomHandler.GetRoomList)
			roomGroup.GET("/users/:id", group.RoomHandler.GetRoomRecord)
		}

		giftGroup := apiGroup.Group("/gift")
		giftGroup.Use(middleware.AuthMiddleware())
		{
			giftGroup.POST("/handoff", group.GiftHandler.StartHandoff)
			giftGroup.POST("/landing", group.GiftHandler.Landing)
			giftGroup.GET("/:id", group.GiftHandler.GetGiftDetail)
		}
	}

	return r
}
