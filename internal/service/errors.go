package service

import (
	"errors"
	"fmt"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrContentNotFound         = errors.New("内容不存在")
	ErrAnalyticsNotFound       = errors.New("分析数据不存在")
	ErrInvalidEngagementType   = errors.New("无效的互动类型")
	ErrForbidden               = errors.New("无权查看该内容的分析数据")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrPersistence             = errors.New("数据存储失败，请稍后重试")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrContentNotFound:         NotFound,
	ErrAnalyticsNotFound:       NotFound,
	ErrInvalidEngagementType:   BadRequest,
	ErrForbidden:               Forbidden,
	ErrMissingLoginCredentials: Unauthorized,
	ErrPersistence:             InternalServerError,
	UnExpectedError:            InternalServerError,
}

// CodeOf 按 errors.Is 匹配业务错误，包装过的错误同样可以识别
// 返回对外展示的错误码与文案，未识别的错误 ok 为 false
func CodeOf(err error) (code int, message string, ok bool) {
	for kind, c := range ErrorMap {
		if errors.Is(err, kind) {
			return c, kind.Error(), true
		}
	}
	return InternalServerError, UnExpectedError.Error(), false
}

// persistenceError 存储层错误统一归类，保留原始错误供日志使用
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
