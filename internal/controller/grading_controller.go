package controller

import (
	"strconv"

	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	GradingService *service.GradingService
}

func NewGradingController(gradingService *service.GradingService) *GradingController {
	return &GradingController{GradingService: gradingService}
}

// ListPending godoc
// @Summary 待评分队列
// @Description 某考试下等待人工评分的尝试，先交卷的排前面
// @Tags 评分
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=[]service.PendingAttempt} "成功"
// @Router /api/exams/{id}/grading/pending [get]
func (c *GradingController) ListPending(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	examID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	pending, err := c.GradingService.ListPending(claims.UserID, claims.Role, uint(examID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pending)
}

// swagger:model ResolveRequest
type ResolveRequest struct {
	Points   *int   `json:"points" binding:"required"`
	Feedback string `json:"feedback"`
}

// Resolve godoc
// @Summary 录入一道主观题的人工评分
// @Description 分数必须在 [0, 题目分值] 内；最后一道判定完成时整卷出分
// @Tags 评分
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "尝试ID"
// @Param   questionId path int true "题目ID"
// @Param   body body ResolveRequest true "评分"
// @Success 200 {object} util.Response{data=model.ExamAttempt} "成功"
// @Failure 400 {object} util.Response "分数越界或题目不属于该尝试"
// @Failure 409 {object} util.Response "尝试不在待评分状态或题目是客观题"
// @Router /api/attempts/{id}/grading/{questionId} [post]
func (c *GradingController) Resolve(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	questionID, err := strconv.ParseUint(ctx.Param("questionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req ResolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.GradingService.Resolve(claims.UserID, claims.Role, uint(attemptID), uint(questionID), *req.Points, req.Feedback)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
