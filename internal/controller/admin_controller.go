package controller

import (
	"quiz_backend/internal/model"
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AdminController manages questions, topics and their links.
type AdminController struct {
	QuestionService *service.QuestionService
	TopicService    *service.TopicService
}

func NewAdminController(questionService *service.QuestionService, topicService *service.TopicService) *AdminController {
	return &AdminController{
		QuestionService: questionService,
		TopicService:    topicService,
	}
}

// ListQuestions godoc
// @Summary 题目列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "按题干搜索"
// @Param type query int false "1 单选, 2 多选"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/questions [get]
func (c *AdminController) ListQuestions(ctx *gin.Context) {
	page, limit := util.Pagination(ctx, util.DefaultPageSize)
	qtype, _ := strconv.Atoi(ctx.Query("type"))

	questions, total, err := c.QuestionService.ListQuestions(ctx.Query("search"), model.QuestionType(qtype), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, questions, total, page, limit)
}

// GetQuestion godoc
// @Summary 题目详情
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id} [get]
func (c *AdminController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.QuestionService.GetQuestion(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// CreateQuestion godoc
// @Summary 创建题目
// @Description 至少一个答案、至少一个正确答案且不能全部正确；单选题只能有一个正确答案
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionInput true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	q, err := c.QuestionService.CreateQuestion(in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Description 带 id 的答案会被更新，未提交的答案会被删除
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionInput true "题目"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id} [put]
func (c *AdminController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	q, err := c.QuestionService.UpdateQuestion(ctx.Request.Context(), id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "题目已被作答"
// @Router /api/admin/questions/{id} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuestionService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateTopic godoc
// @Summary 创建主题
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.TopicInput true "主题"
// @Success 201 {object} util.Response{data=model.Topic}
// @Router /api/admin/topics [post]
func (c *AdminController) CreateTopic(ctx *gin.Context) {
	var in service.TopicInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	t, err := c.TopicService.CreateTopic(in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, t)
}

// UpdateTopic godoc
// @Summary 更新主题
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Param body body service.TopicInput true "主题"
// @Success 200 {object} util.Response{data=model.Topic}
// @Failure 404 {object} util.Response
// @Router /api/admin/topics/{id} [put]
func (c *AdminController) UpdateTopic(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.TopicInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	t, err := c.TopicService.UpdateTopic(id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// DeleteTopic godoc
// @Summary 删除主题
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "主题已有答题记录"
// @Router /api/admin/topics/{id} [delete]
func (c *AdminController) DeleteTopic(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.TopicService.DeleteTopic(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListLinks godoc
// @Summary 主题题目列表
// @Description 按顺序返回主题下的全部题目链接（包括未启用的）
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response{data=[]model.TopicLink}
// @Router /api/admin/topics/{id}/links [get]
func (c *AdminController) ListLinks(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	links, err := c.TopicService.ListLinks(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, links)
}

// SetLink godoc
// @Summary 设置题目顺序
// @Description 将题目加入主题或调整其顺序与启用状态；顺序冲突时其后的题目依次后移
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Param questionId path int true "题目ID"
// @Param body body service.LinkInput true "顺序与启用状态"
// @Success 200 {object} util.Response{data=model.TopicLink}
// @Failure 404 {object} util.Response
// @Router /api/admin/topics/{id}/links/{questionId} [put]
func (c *AdminController) SetLink(ctx *gin.Context) {
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}
	var in service.LinkInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	link, err := c.TopicService.SetLink(ctx.Request.Context(), topicID, questionID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, link)
}

// RemoveLink godoc
// @Summary 从主题移除题目
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "主题ID"
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/topics/{id}/links/{questionId} [delete]
func (c *AdminController) RemoveLink(ctx *gin.Context) {
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}
	if err := c.TopicService.RemoveLink(ctx.Request.Context(), topicID, questionID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListAttempts godoc
// @Summary 答题记录列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param topicId query int false "主题ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/attempts [get]
func (c *AdminController) ListAttempts(ctx *gin.Context) {
	page, limit := util.Pagination(ctx, util.DefaultPageSize)
	topicID := util.MustParseUint(ctx.Query("topicId"))

	attempts, total, err := c.TopicService.ListAttempts(topicID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, attempts, total, page, limit)
}
