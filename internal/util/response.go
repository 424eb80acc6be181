package util

import (
	"net/http"
	"quiz_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构；错误响应附带请求ID，便于与日志对应
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

// Page 返回一页数据及总页数
func Page(c *gin.Context, list interface{}, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	Success(c, PageResponse{List: list, Total: total, Page: page, Limit: limit, Pages: pages})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(ContextRequestIDKey),
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound answers requests that match no route.
func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "route not found: "+c.Request.Method+" "+c.Request.URL.Path)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// LogInternalError logs err with the request id and hides it from the client.
func LogInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("requestId", c.GetString(ContextRequestIDKey)),
	)
	Error(c, http.StatusInternalServerError, "Internal server error")
}
