package wire

import (
	"Shiftline/internal/api"
	"Shiftline/internal/api/config"
	"Shiftline/internal/api/handler"
	"Shiftline/internal/job"
	"Shiftline/internal/pkg/cron"
	"Shiftline/internal/pkg/eventbus"
	"Shiftline/internal/pkg/kafka"
	"Shiftline/internal/pkg/redis"
	"Shiftline/internal/pkg/shiftapi"
	"Shiftline/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	IMService    service.IMSessionService
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
}

func BuildApplication(cfg *config.Config) (*ApplicationContainer, error) {
	transport := redis.NewSignalTransport()
	upstream := shiftapi.New(cfg.Upstream)
	bus := eventbus.New()
	hub := handler.NewHub()

	joinEchoTimeout := time.Duration(cfg.IM.JoinEchoTimeout) * time.Second

	imService := service.NewIMSessionService(transport, upstream, bus, joinEchoTimeout)
	dirService := service.NewDirectoryService(upstream, hub, bus)
	giftService := service.NewGiftService(upstream)

	handlers := &api.HandlersGroup{
		WsHandler:   handler.NewWsHandler(hub, imService, dirService),
		RoomHandler: handler.NewRoomHandler(dirService),
		GiftHandler: handler.NewGiftHandler(giftService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewSessionSweepJob(imService))

	kafkaMgr, err := kafka.NewConsumerManager(cfg, bus)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		IMService:    imService,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
