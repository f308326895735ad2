package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PremiumStatus 高级卖家申请的三个状态
type PremiumStatus string

const (
	PremiumNone     PremiumStatus = "none"
	PremiumPending  PremiumStatus = "pending"
	PremiumApproved PremiumStatus = "approved"
)

// User 应用内的用户实体 (camelCase)
type User struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	Role          Role          `json:"role"`
	AvatarURL     string        `json:"avatarUrl"`
	IsVerified    bool          `json:"isVerified"`
	PremiumStatus PremiumStatus `json:"premiumStatus"`
	Email         string        `json:"email"`
	Bio           string        `json:"bio"`
	JoinedAt      string        `json:"joinedAt"`
}

// UserRecord profiles 表的行结构 (snake_case 列名)
type UserRecord struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	AvatarURL     string `json:"avatar_url"`
	IsVerified    bool   `json:"is_verified"`
	PremiumStatus string `json:"premium_status"`
	Email         string `json:"email"`
	Bio           string `json:"bio"`
	JoinedAt      string `json:"joined_at"`
}

// Entity 把远端行映射为应用实体
func (r UserRecord) Entity() User {
	return User{
		ID:            r.ID,
		Username:      r.Username,
		Role:          Role(r.Role),
		AvatarURL:     r.AvatarURL,
		IsVerified:    r.IsVerified,
		PremiumStatus: PremiumStatus(r.PremiumStatus),
		Email:         r.Email,
		Bio:           r.Bio,
		JoinedAt:      r.JoinedAt,
	}
}

// Record 反向映射，用于插入 profiles 行
func (u User) Record() UserRecord {
	return UserRecord{
		ID:            u.ID,
		Username:      u.Username,
		Role:          string(u.Role),
		AvatarURL:     u.AvatarURL,
		IsVerified:    u.IsVerified,
		PremiumStatus: string(u.PremiumStatus),
		Email:         u.Email,
		Bio:           u.Bio,
		JoinedAt:      u.JoinedAt,
	}
}
