package services

import "errors"

// 错误分类见各调用点：校验错误在发请求之前返回，越权错误来自本地
// 前置检查（远端仍会用行级规则做最终裁决），远端错误原样透传，
// 未命中用固定的 not-found 哨兵区分。
var (
	ErrPasswordRequired = errors.New("password required")
	ErrUserNotFound     = errors.New("user not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrNotOwner         = errors.New("unauthorized: you do not own this listing")
)
