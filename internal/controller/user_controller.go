package controller

import (
	"quiz_backend/internal/model"
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户管理相关的HTTP请求
type UserController struct {
	UserService *service.UserService
}

// NewUserController 创建一个新的用户控制器实例
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

type disableRequest struct {
	Disabled bool `json:"disabled"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=student admin"`
}

// GetUsers godoc
// @Summary 获取用户列表
// @Description 获取用户列表，支持分页和筛选
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(10)
// @Param   role query string false "角色筛选"
// @Param   disabled query bool false "是否禁用"
// @Param   search query string false "搜索关键词"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, limit := util.Pagination(ctx, util.DefaultPageSize)
	filter := service.UserFilter{
		Role:   ctx.Query("role"),
		Search: ctx.Query("search"),
	}
	if raw := ctx.Query("disabled"); raw != "" {
		disabled, err := strconv.ParseBool(raw)
		if err != nil {
			util.BadRequest(ctx, "invalid disabled")
			return
		}
		filter.Disabled = &disabled
	}

	users, total, err := c.UserService.GetUsers(page, limit, filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, users, total, page, limit)
}

// DisableUser godoc
// @Summary 禁用/启用用户
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Param body body disableRequest true "禁用状态"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
func (c *UserController) DisableUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req disableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	if claims := util.GetUserFromContext(ctx); claims != nil && claims.UserID == id && req.Disabled {
		util.BadRequest(ctx, "cannot disable yourself")
		return
	}
	user, err := c.UserService.DisableUser(id, req.Disabled)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// SetRole godoc
// @Summary 修改用户角色
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Param body body roleRequest true "角色"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id}/role [put]
func (c *UserController) SetRole(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req roleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}
	user, err := c.UserService.SetRole(id, model.UserRole(req.Role))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
