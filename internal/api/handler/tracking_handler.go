package handler

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/response"
	"Lumen/internal/pkg/util"
	"Lumen/internal/service"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewTrackingHandler(analyticsSvc service.AnalyticsService) *TrackingHandler {
	return &TrackingHandler{
		analyticsSvc: analyticsSvc,
	}
}

// TrackView 上报浏览，允许匿名
func (h *TrackingHandler) TrackView(c *gin.Context) {
	contentID, err := strconv.ParseUint(c.Param("content_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.TrackViewDTO
	// 空请求体视为未携带任何可选字段
	if err = c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, fmt.Errorf("%w: %v", service.ErrParamInvalid, err))
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	viewerID := c.GetUint64(consts.CtxUserID)
	if err = h.analyticsSvc.TrackView(c.Request.Context(), contentID, viewerID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// TrackEngagement 上报点赞、评论、分享
func (h *TrackingHandler) TrackEngagement(c *gin.Context) {
	contentID, err := strconv.ParseUint(c.Param("content_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.TrackEngagementDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%w: %v", service.ErrParamInvalid, err))
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	userID := c.GetUint64(consts.CtxUserID)
	if err = h.analyticsSvc.TrackEngagement(c.Request.Context(), contentID, userID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
