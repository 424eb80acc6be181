package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParamUint reads a positive integer path parameter.
func ParamUint(c *gin.Context, name string) (uint, bool) {
	id := MustParseUint(c.Param(name))
	return id, id > 0
}

// Pagination reads page and limit from the query string, falling back to
// defaultLimit when limit is missing or out of range.
func Pagination(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > MaxPageSize {
		limit = defaultLimit
	}
	return page, limit
}
