package controller

import (
	"strconv"

	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// Enroll godoc
// @Summary 选课
// @Description 学生选入一个学期，退课后可重新选入
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   sessionId path int true "学期ID"
// @Success 201 {object} util.Response{data=model.Enrollment} "成功"
// @Failure 409 {object} util.Response "已选该学期或学期已归档"
// @Router /api/sessions/{sessionId}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	sessionID, err := strconv.ParseUint(ctx.Param("sessionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid session id")
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, uint(sessionID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// Drop godoc
// @Summary 退课
// @Description 退课不影响进行中的考试尝试
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   sessionId path int true "学期ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/sessions/{sessionId}/enroll [delete]
func (c *EnrollmentController) Drop(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	sessionID, err := strconv.ParseUint(ctx.Param("sessionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid session id")
		return
	}

	if err := c.EnrollmentService.Drop(claims.UserID, uint(sessionID)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListBySession godoc
// @Summary 学期选课名单（教师）
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   sessionId path int true "学期ID"
// @Success 200 {object} util.Response{data=[]model.Enrollment} "成功"
// @Router /api/sessions/{sessionId}/enrollments [get]
func (c *EnrollmentController) ListBySession(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("sessionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid session id")
		return
	}

	enrollments, err := c.EnrollmentService.ListBySession(uint(sessionID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}
