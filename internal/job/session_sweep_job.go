package job

import (
	"Shiftline/internal/api/config"
	"Shiftline/internal/service"
	log "log/slog"
	"time"
)

// SessionSweepJob 清理空闲的房间会话。浏览器崩溃或网络中断时 WS 连接
// 可能没走正常关闭流程，靠这里兜底补发 LEAVE
type SessionSweepJob struct {
	imSvc service.IMSessionService
}

func NewSessionSweepJob(imSvc service.IMSessionService) *SessionSweepJob {
	return &SessionSweepJob{
		imSvc: imSvc,
	}
}

func (s *SessionSweepJob) Run() {
	maxIdle := time.Duration(config.Cfg.IM.SessionIdleTimeout) * time.Second
	if maxIdle <= 0 {
		maxIdle = 10 * time.Minute
	}

	swept := s.imSvc.SweepIdle(maxIdle)
	if swept > 0 {
		log.Info("idle session sweep finished", "swept", swept)
	}
}
