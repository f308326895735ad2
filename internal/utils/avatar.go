package utils

import "net/url"

// DiceBear 头像模板，注册时根据用户名生成确定性头像
const avatarTemplate = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// AvatarURL 根据用户名返回默认头像地址
func AvatarURL(username string) string {
	return avatarTemplate + url.QueryEscape(username)
}
