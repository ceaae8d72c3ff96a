package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrTransportNotReady   = errors.New("信令通道未就绪")
	ErrRoomSessionNotFound = errors.New("房间会话不存在")
	ErrRoomRecordNotFound  = errors.New("房间成员记录不存在")
	ErrGiftNotFound        = errors.New("礼物不存在")
	ErrUpstream            = errors.New("上游服务异常")
	UnauthorizedError      = errors.New("权限不足")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrTransportNotReady:   InternalServerError,
	ErrRoomSessionNotFound: BadRequest,
	ErrRoomRecordNotFound:  NotFound,
	ErrGiftNotFound:        NotFound,
	ErrUpstream:            InternalServerError,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}
