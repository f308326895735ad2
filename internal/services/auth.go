package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"nexusmarket/internal/models"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/utils"
)

// AdminSecret 注册时带上这个共享口令直接获得管理员身份
const AdminSecret = "nexus-admin"

const profilesTable = "profiles"

// AuthService 认证和用户资料操作的门面
type AuthService struct {
	remote *remote.Client
}

func NewAuthService(rc *remote.Client) *AuthService {
	return &AuthService{remote: rc}
}

// Login 邮箱密码登录，成功后拉取并返回映射后的用户资料
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}

	sess, err := s.remote.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID == "" {
		return nil, ErrUserNotFound
	}

	return s.GetUserProfile(ctx, sess.UserID)
}

// Register 创建远端认证身份并插入 profiles 行。
// adminSecret 匹配共享口令时注册为管理员（自动认证、premium 直接通过）。
// profiles 插入失败时仍返回本地构造的资料对象，注册流程不因二次写入阻塞，
// 只把失败记进日志。
func (s *AuthService) Register(ctx context.Context, username, password, email, adminSecret string) (*models.User, error) {
	sess, err := s.remote.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID == "" {
		return nil, errors.New("registration failed")
	}

	isAdmin := adminSecret == AdminSecret
	user := models.User{
		ID:            sess.UserID,
		Username:      username,
		Email:         email,
		Role:          models.RoleUser,
		PremiumStatus: models.PremiumNone,
		AvatarURL:     utils.AvatarURL(username),
		Bio:           "New member of the Nexus.",
		JoinedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if isAdmin {
		user.Role = models.RoleAdmin
		user.IsVerified = true
		user.PremiumStatus = models.PremiumApproved
	}

	if _, err := s.remote.Insert(ctx, profilesTable, user.Record()); err != nil {
		log.Printf("Profile insert failed for %s, returning local profile: %v", username, err)
	}
	return &user, nil
}

// GetUserProfile 按 id 拉取用户资料，未命中返回 ErrProfileNotFound
func (s *AuthService) GetUserProfile(ctx context.Context, id string) (*models.User, error) {
	data, err := s.remote.SelectSingle(ctx, profilesTable, remote.Query{Eq: map[string]string{"id": id}})
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return decodeUser(data)
}

// GetAllUsers 拉取全部用户（控制台用）
func (s *AuthService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	data, err := s.remote.Select(ctx, profilesTable, remote.Query{Order: "joined_at.desc"})
	if err != nil {
		return nil, err
	}

	var records []models.UserRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	users := make([]models.User, 0, len(records))
	for _, r := range records {
		users = append(users, r.Entity())
	}
	return users, nil
}

// ProfilePatch 资料更新项，nil 表示不修改
type ProfilePatch struct {
	Bio       *string
	Email     *string
	AvatarURL *string
}

// UpdateProfile 部分更新用户资料
func (s *AuthService) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	updates := map[string]any{}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.AvatarURL != nil {
		updates["avatar_url"] = *patch.AvatarURL
	}

	return s.updateProfileRow(ctx, id, updates)
}

// ApplyForPremium 提交高级卖家申请，状态置为 pending 等管理员审核
func (s *AuthService) ApplyForPremium(ctx context.Context, id string) (*models.User, error) {
	return s.updateProfileRow(ctx, id, map[string]any{"premium_status": string(models.PremiumPending)})
}

// ToggleUserVerification 读当前认证标记再写反值，和挂单的 featured
// 切换一样存在读写竞态
func (s *AuthService) ToggleUserVerification(ctx context.Context, id string) (*models.User, error) {
	data, err := s.remote.SelectSingle(ctx, profilesTable, remote.Query{
		Select: "is_verified",
		Eq:     map[string]string{"id": id},
	})
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var current struct {
		IsVerified bool `json:"is_verified"`
	}
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, fmt.Errorf("decode verification flag: %w", err)
	}

	return s.updateProfileRow(ctx, id, map[string]any{"is_verified": !current.IsVerified})
}

// ManagePremiumStatus 管理员审批高级卖家状态。只在控制台路由下调用，
// 客户端不再重复做角色判断
func (s *AuthService) ManagePremiumStatus(ctx context.Context, id string, status models.PremiumStatus) (*models.User, error) {
	return s.updateProfileRow(ctx, id, map[string]any{"premium_status": string(status)})
}

// Logout 终止远端会话
func (s *AuthService) Logout(ctx context.Context) error {
	return s.remote.SignOut(ctx)
}

func (s *AuthService) updateProfileRow(ctx context.Context, id string, updates map[string]any) (*models.User, error) {
	data, err := s.remote.Update(ctx, profilesTable, remote.Query{Eq: map[string]string{"id": id}}, updates)
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

func decodeUser(data []byte) (*models.User, error) {
	var r models.UserRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	u := r.Entity()
	return &u, nil
}
