package response

import (
	"go-friendship/internal/common/errcode"
	"go-friendship/internal/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	write(c, status, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes the coded error. An uncoded error reaching this point is
// logged with its full text and answered with the generic message only.
func Error(c *gin.Context, err error) {
	e := errcode.FromError(err)
	if e != err {
		log.Errorw("request failed",
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err.Error(),
		)
	}
	write(c, e.HTTPStatus(), Response{
		Code:    e.Code,
		Message: e.Message,
	})
}

const RequestIDKey = "request_id"

func write(c *gin.Context, status int, resp Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal response: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}
