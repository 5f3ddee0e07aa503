package handler

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/response"
	"Lumen/internal/pkg/util"
	"Lumen/internal/service"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	reportSvc service.AnalyticsReportService
}

func NewAnalyticsHandler(reportSvc service.AnalyticsReportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		reportSvc: reportSvc,
	}
}

func currentIdentity(c *gin.Context) service.Identity {
	return service.Identity{
		UserID: c.GetUint64(consts.CtxUserID),
		Roles:  c.GetStringSlice(consts.CtxRoles),
	}
}

// GetContentAnalytics 单条内容分析数据
func (h *AnalyticsHandler) GetContentAnalytics(c *gin.Context) {
	contentID, err := strconv.ParseUint(c.Param("content_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := h.reportSvc.GetContentAnalytics(c.Request.Context(), contentID, currentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetCreatorDashboard 当前创作者的仪表盘
func (h *AnalyticsHandler) GetCreatorDashboard(c *gin.Context) {
	var req dto.DashboardQueryDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, fmt.Errorf("%w: %v", service.ErrParamInvalid, err))
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	res, err := h.reportSvc.GetCreatorDashboard(c.Request.Context(), c.GetUint64(consts.CtxUserID), req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetAnalyticsReport 当前创作者的时间段报表
func (h *AnalyticsHandler) GetAnalyticsReport(c *gin.Context) {
	var req dto.ReportQueryDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, fmt.Errorf("%w: %v", service.ErrParamInvalid, err))
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	res, err := h.reportSvc.GetAnalyticsReport(c.Request.Context(), c.GetUint64(consts.CtxUserID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
