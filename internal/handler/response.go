package handler

import (
	"errors"
	"net/http"

	"github.com/Testicode234/developer-2/internal/errs"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailFromError 按业务错误类别映射HTTP状态码
//
// PaymentUncertain 返回202：转账仍在途，调用方稍后用同一操作重试，
// 绝不把"钱没动"包装成成功。
func FailFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrInvalidState), errors.Is(err, errs.ErrInvalidInput):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrPaymentFailed):
		ErrorResponse(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, errs.ErrPaymentUncertain):
		ErrorResponse(c, http.StatusAccepted, err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
