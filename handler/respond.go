package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voice-recorder/dto"
	"voice-recorder/pkg/apperror"
)

// respondError maps the domain taxonomy to HTTP. Domain failures pass
// through with their message; anything unexpected is logged and masked.
func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("unexpected error")
		c.AbortWithStatusJSON(appErr.HTTPStatus(), dto.Fail("internal server error"))
		return
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), dto.Fail(appErr.Message))
}
