package controller

import (
	"strconv"

	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	ResultService *service.ResultService
}

func NewResultController(resultService *service.ResultService) *ResultController {
	return &ResultController{ResultService: resultService}
}

// GetResult godoc
// @Summary 成绩视图
// @Description 已出分的尝试返回逐题明细；尚未评完的返回 available=false 的占位
// @Tags 成绩
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.ResultView} "成功"
// @Failure 404 {object} util.Response "尝试不存在或不属于当前用户"
// @Router /api/attempts/{id}/result [get]
func (c *ResultController) GetResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	staff := claims.Role == model.Teacher || claims.Role == model.Admin
	view, err := c.ResultService.GetResult(claims.UserID, uint(attemptID), staff)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
