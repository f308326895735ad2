package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoRows 单行查询没有命中任何记录
var ErrNoRows = errors.New("remote: no rows returned")

// Error 远端服务返回的错误，Message 原样保留后端的报错文案
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// apiError 兼容 PostgREST ({"message"}) 和 GoTrue ({"msg"} / {"error_description"}) 两种错误体
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func newError(status int, body []byte) *Error {
	var ae apiError
	msg := ""
	if err := json.Unmarshal(body, &ae); err == nil {
		switch {
		case ae.Message != "":
			msg = ae.Message
		case ae.Msg != "":
			msg = ae.Msg
		case ae.ErrorDescription != "":
			msg = ae.ErrorDescription
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("remote service error: status %d", status)
	}
	return &Error{Status: status, Message: msg}
}
