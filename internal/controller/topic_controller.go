package controller

import (
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TopicController serves the quiz flow of a signed-in user.
type TopicController struct {
	TopicService   *service.TopicService
	AttemptService *service.AttemptService
	PageSize       int
}

func NewTopicController(topicService *service.TopicService, attemptService *service.AttemptService, pageSize int) *TopicController {
	if pageSize <= 0 {
		pageSize = util.DefaultPageSize
	}
	return &TopicController{
		TopicService:   topicService,
		AttemptService: attemptService,
		PageSize:       pageSize,
	}
}

// ListTopics godoc
// @Summary 主题列表
// @Description 按 id 升序分页返回主题
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/topics [get]
func (c *TopicController) ListTopics(ctx *gin.Context) {
	page, limit := util.Pagination(ctx, c.PageSize)
	topics, total, err := c.TopicService.ListTopics(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, topics, total, page, limit)
}

// GetTopic godoc
// @Summary 主题概览
// @Description 返回主题、当前用户的答题记录、统计数据以及下一题序号
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response{data=service.TopicOverview}
// @Failure 404 {object} util.Response
// @Router /api/topics/{id} [get]
func (c *TopicController) GetTopic(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	overview, err := c.AttemptService.Overview(ctx.Request.Context(), userID, topicID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// StartTopic godoc
// @Summary 开始或继续答题
// @Description 为当前用户创建或恢复该主题的答题记录，返回下一道未作答题目的序号；全部作答后返回 0 并结束
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/topics/{id}/start [post]
func (c *TopicController) StartTopic(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	res, err := c.AttemptService.StartTopic(ctx.Request.Context(), userID, topicID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"attemptId":  res.Attempt.ID,
		"nextNumber": res.NextNumber,
		"finished":   res.Finished,
	})
}

func questionNumber(ctx *gin.Context) (int, bool) {
	number, err := strconv.Atoi(ctx.Param("number"))
	if err != nil {
		util.BadRequest(ctx, "invalid number")
		return 0, false
	}
	return number, true
}

// GetQuestion godoc
// @Summary 获取题目
// @Description 按序号返回主题中当前启用的题目，不包含正确答案
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Param number path int true "题目序号，从 1 开始"
// @Success 200 {object} util.Response{data=service.QuestionView}
// @Failure 404 {object} util.Response
// @Router /api/topics/{id}/questions/{number} [get]
func (c *TopicController) GetQuestion(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	number, ok := questionNumber(ctx)
	if !ok {
		return
	}

	view, err := c.AttemptService.GetQuestion(ctx.Request.Context(), userID, topicID, number)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

type SubmitAnswerRequest struct {
	AnswerIDs []uint `json:"answerIds"`
}

// SubmitAnswer godoc
// @Summary 提交答案
// @Description 保存所选答案（覆盖之前的选择），返回下一道未作答题目的序号；0 表示已完成
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Param number path int true "题目序号，从 1 开始"
// @Param body body SubmitAnswerRequest true "所选答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/topics/{id}/questions/{number} [post]
func (c *TopicController) SubmitAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	number, ok := questionNumber(ctx)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}

	res, err := c.AttemptService.SubmitAnswer(ctx.Request.Context(), userID, topicID, number, req.AnswerIDs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
