package controller

import (
	"errors"
	"net/http"
	"quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError writes the response for an error returned by a service.
// Unknown errors are logged and reported as 500.
func respondError(ctx *gin.Context, err error) {
	switch {
	case util.IsValidationError(err):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrTopicNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrLinkNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrAttemptNotStarted),
		errors.Is(err, util.ErrAttemptFinished),
		errors.Is(err, util.ErrQuestionInUse),
		errors.Is(err, util.ErrAnswerInUse),
		errors.Is(err, util.ErrTopicInUse),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidLogin):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParamUint(ctx, name)
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}
