package common

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NewErrorResponse 將錯誤轉為 HTTP 狀態碼與響應內容，details 僅在 debug 時填入
func NewErrorResponse(err error, debug bool) (int, ErrorResponse) {
	ce := AsCustomError(err)
	resp := ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	return ce.Status, resp
}
