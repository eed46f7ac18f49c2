package controller

import (
	"strconv"

	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService    *service.ExamService
	StorageService *service.StorageService
}

func NewExamController(examService *service.ExamService, storageService *service.StorageService) *ExamController {
	return &ExamController{ExamService: examService, StorageService: storageService}
}

// swagger:model CreateExamRequest
type CreateExamRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
	MaxAttempts     int    `json:"maxAttempts"`
}

// CreateExam godoc
// @Summary 创建考试（draft）
// @Tags 考试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   sessionId path int true "学期ID"
// @Param   body body CreateExamRequest true "考试信息"
// @Success 201 {object} util.Response{data=model.Exam} "创建成功"
// @Router /api/sessions/{sessionId}/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	sessionID, err := strconv.ParseUint(ctx.Param("sessionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid session id")
		return
	}

	var req CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam := &model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     req.MaxAttempts,
	}
	created, err := c.ExamService.Create(claims.UserID, claims.Role, uint(sessionID), exam)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// GetExam godoc
// @Summary 考试详情
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	exam, err := c.ExamService.Get(uint(id))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// swagger:model UpdateExamRequest
type UpdateExamRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	CoverURL        string `json:"coverUrl"`
	DurationMinutes int    `json:"durationMinutes"`
	MaxAttempts     int    `json:"maxAttempts"`
}

// UpdateExam godoc
// @Summary 更新考试（仅 draft）
// @Tags 考试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Param   body body UpdateExamRequest true "考试信息"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Failure 409 {object} util.Response "考试已发布，不可编辑"
// @Router /api/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	var req UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	patch := &model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		CoverURL:        req.CoverURL,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     req.MaxAttempts,
	}
	exam, err := c.ExamService.Update(claims.UserID, claims.Role, uint(id), patch)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// DeleteExam godoc
// @Summary 删除考试（仅 draft）
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	if err := c.ExamService.Delete(claims.UserID, claims.Role, uint(id)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// PublishExam godoc
// @Summary 发布考试
// @Description 发布后题目冻结并对学生可见，空卷不允许发布
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Failure 409 {object} util.Response "状态不允许或没有题目"
// @Router /api/exams/{id}/publish [post]
func (c *ExamController) PublishExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	exam, err := c.ExamService.Publish(claims.UserID, claims.Role, uint(id))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// CloseExam godoc
// @Summary 关闭考试
// @Description 关闭后不再接受新尝试，进行中的尝试照常按截止时间结算
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Router /api/exams/{id}/close [post]
func (c *ExamController) CloseExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	exam, err := c.ExamService.Close(claims.UserID, claims.Role, uint(id))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// ReopenExam godoc
// @Summary 重新开放已关闭的考试
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Router /api/exams/{id}/reopen [post]
func (c *ExamController) ReopenExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	exam, err := c.ExamService.Reopen(claims.UserID, claims.Role, uint(id))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// ListSessionExams godoc
// @Summary 学期下的考试列表（教师）
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   sessionId path int true "学期ID"
// @Param   status query string false "按状态过滤"
// @Success 200 {object} util.Response{data=[]model.Exam} "成功"
// @Router /api/sessions/{sessionId}/exams [get]
func (c *ExamController) ListSessionExams(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("sessionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid session id")
		return
	}
	exams, err := c.ExamService.ListBySession(uint(sessionID), ctx.Query("status"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// ListMyExams godoc
// @Summary 我的可考列表（学生）
// @Description 学生有效选课学期下所有已发布的考试
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Exam} "成功"
// @Router /api/exams [get]
func (c *ExamController) ListMyExams(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	exams, err := c.ExamService.ListForStudent(claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// swagger:model QuestionRequest
type QuestionRequest struct {
	QuestionType  string `json:"questionType" binding:"required,oneof=single_choice true_false open_ended"`
	Content       string `json:"content" binding:"required"`
	Options       string `json:"options"`
	CorrectAnswer string `json:"correctAnswer"`
	Points        int    `json:"points" binding:"required"`
	Order         int    `json:"order"`
	Explanation   string `json:"explanation"`
}

// AddQuestion godoc
// @Summary 添加题目（仅 draft）
// @Tags 考试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Param   body body QuestionRequest true "题目"
// @Success 201 {object} util.Response{data=model.ExamQuestion} "创建成功"
// @Router /api/exams/{id}/questions [post]
func (c *ExamController) AddQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	examID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q := &model.ExamQuestion{
		QuestionType:  req.QuestionType,
		Content:       req.Content,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Order:         req.Order,
		Explanation:   req.Explanation,
	}
	created, err := c.ExamService.AddQuestion(claims.UserID, claims.Role, uint(examID), q)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// ListQuestions godoc
// @Summary 题目列表（教师，含答案）
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=[]model.ExamQuestion} "成功"
// @Router /api/exams/{id}/questions [get]
func (c *ExamController) ListQuestions(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	questions, err := c.ExamService.GetQuestions(uint(examID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// UpdateQuestion godoc
// @Summary 更新题目（仅 draft）
// @Tags 考试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body QuestionRequest true "题目"
// @Success 200 {object} util.Response{data=model.ExamQuestion} "成功"
// @Router /api/questions/{questionId} [put]
func (c *ExamController) UpdateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questionID, err := strconv.ParseUint(ctx.Param("questionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	patch := &model.ExamQuestion{
		Content:       req.Content,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Order:         req.Order,
		Explanation:   req.Explanation,
	}
	q, err := c.ExamService.UpdateQuestion(claims.UserID, claims.Role, uint(questionID), patch)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目（仅 draft）
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/questions/{questionId} [delete]
func (c *ExamController) DeleteQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questionID, err := strconv.ParseUint(ctx.Param("questionId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	if err := c.ExamService.DeleteQuestion(claims.UserID, claims.Role, uint(questionID)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadCover godoc
// @Summary 上传考试封面
// @Tags 考试
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "封面图片"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/exam-covers/upload [post]
func (c *ExamController) UploadCover(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	defer file.Close()

	url, err := c.StorageService.Upload(ctx.Request.Context(), "covers", fileHeader.Filename, file,
		fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
