package controller

import (
	"strconv"

	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// StartAttempt godoc
// @Summary 开始考试
// @Description 固化题目快照并计算截止时间，考试发布后的改题不影响已开始的尝试
// @Tags 考试尝试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 201 {object} util.Response{data=service.StartAttemptResult} "成功"
// @Failure 403 {object} util.Response "未选课"
// @Failure 409 {object} util.Response "次数用尽或已有进行中的尝试"
// @Router /api/exams/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	examID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	result, err := c.AttemptService.StartAttempt(claims.UserID, uint(examID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// GetAttempt godoc
// @Summary 作答现场
// @Description 返回题目与已提交的答案；读取会触发超时隐式交卷
// @Tags 考试尝试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.AttemptState} "成功"
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	staff := claims.Role == model.Teacher || claims.Role == model.Admin
	state, err := c.AttemptService.GetAttempt(claims.UserID, uint(attemptID), staff)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	Value string `json:"value"`
}

// SubmitAnswer godoc
// @Summary 提交/覆盖一道题的作答
// @Description 幂等操作，同一题重复提交只保留最新值
// @Tags 考试尝试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "尝试ID"
// @Param   questionId path int true "题目ID"
// @Param   body body SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "题目不属于该尝试"
// @Failure 409 {object} util.Response "已过截止时间或尝试已结束"
// @Router /api/attempts/{id}/answers/{questionId} [put]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
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

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AttemptService.SubmitAnswer(claims.UserID, uint(attemptID), uint(questionID), req.Value); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SubmitAttempt godoc
// @Summary 交卷
// @Description 客观题立即判分；若无主观题直接出分
// @Tags 考试尝试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "尝试ID"
// @Success 200 {object} util.Response{data=model.ExamAttempt} "成功"
// @Failure 409 {object} util.Response "重复交卷或已过截止时间"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	attempt, err := c.AttemptService.SubmitAttempt(claims.UserID, uint(attemptID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// ListMyAttempts godoc
// @Summary 我的尝试列表
// @Tags 考试尝试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ExamAttempt} "成功"
// @Router /api/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempts, err := c.AttemptService.ListByUser(claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
