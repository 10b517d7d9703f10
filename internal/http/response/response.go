package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/platform/apierr"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type ErrorEnvelope struct {
	Error    APIError `json:"error"`
	Redirect string   `json:"redirect,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps err through apierr. The body carries a validation message,
// an explicit public message, or the fixed text for the code. The cause only reaches c.Errors.
func RespondServiceError(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	body := ErrorEnvelope{Error: APIError{Code: ae.Code, Message: ae.PublicMessage()}}
	if ae.Status < http.StatusInternalServerError {
		if ve, ok := pkgerrors.AsValidation(err); ok {
			body.Error.Message = ve.Message
			body.Error.Field = ve.Field
		} else if msg, ok := pkgerrors.PublicMessage(err); ok {
			body.Error.Message = msg
		}
	}
	_ = c.Error(err)
	c.JSON(ae.Status, body)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
