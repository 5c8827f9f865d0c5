package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resp 统一信封：data 与 error 互斥
type Resp struct {
	Data  interface{} `json:"data"`
	Error *ErrBody    `json:"error"`
}

// OK 成功响应
func OK(data interface{}) Resp {
	return Resp{Data: data}
}

// Error 失败响应，返回对应 HTTP 状态码
func Error(err error) (int, Resp) {
	status, body := FromError(err)
	return status, Resp{Error: body}
}

// JSON 写成功信封
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, OK(data))
}

// Abort 写失败信封并终止后续 handler
func Abort(c *gin.Context, err error) {
	status, r := Error(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, r)
}
