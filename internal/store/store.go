// Package store 持有会话用户、挂单集合和管理员用户列表的应用状态。
// 由组合根创建后注入到各个 handler，所有变更都走 action 方法。
package store

import (
	"context"
	"log"
	"sync"

	"nexusmarket/internal/models"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/services"
)

type Store struct {
	remote   *remote.Client
	auth     *services.AuthService
	listings *services.ListingService

	mu       sync.RWMutex
	user     *models.User
	items    []models.Listing
	allUsers []models.User
	loading  bool
	errMsg   string
}

func New(rc *remote.Client, auth *services.AuthService, listings *services.ListingService) *Store {
	return &Store{
		remote:   rc,
		auth:     auth,
		listings: listings,
		items:    []models.Listing{},
		allUsers: []models.User{},
	}
}

// ---- 状态读取 ----

// User 当前会话用户的副本，未登录返回 nil
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Listings() []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) AllUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.allUsers))
	copy(out, s.allUsers)
	return out
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// ---- 会话 actions ----

// CheckSession 启动时询问远端是否有既存会话，有则恢复用户。
// 没有会话不算错误
func (s *Store) CheckSession(ctx context.Context) {
	sess := s.remote.Session()
	if sess == nil || sess.UserID == "" {
		return
	}
	user, err := s.auth.GetUserProfile(ctx, sess.UserID)
	if err != nil {
		log.Printf("Session check failed: %v", err)
		return
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Login 登录。失败时把错误文案放进共享状态供页面持续展示
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	user, err := s.auth.Login(ctx, email, password)
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
	} else {
		s.user = user
		s.errMsg = ""
	}
	s.mu.Unlock()
	return user, err
}

// Register 注册并直接进入登录态
func (s *Store) Register(ctx context.Context, username, password, email, adminSecret string) (*models.User, error) {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	user, err := s.auth.Register(ctx, username, password, email, adminSecret)
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
	} else {
		s.user = user
		s.errMsg = ""
	}
	s.mu.Unlock()
	return user, err
}

// UpdateProfile 更新当前用户资料，失败只清 loading 不覆盖会话
func (s *Store) UpdateProfile(ctx context.Context, patch services.ProfilePatch) error {
	current := s.User()
	if current == nil {
		return nil
	}
	s.setLoading(true)
	updated, err := s.auth.UpdateProfile(ctx, current.ID, patch)
	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.user = updated
	}
	s.mu.Unlock()
	return err
}

// ApplyForPremium 当前用户申请高级卖家
func (s *Store) ApplyForPremium(ctx context.Context) error {
	current := s.User()
	if current == nil {
		return nil
	}
	s.setLoading(true)
	updated, err := s.auth.ApplyForPremium(ctx, current.ID)
	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.user = updated
	}
	s.mu.Unlock()
	return err
}

// Logout 退出登录并清掉会话相关状态
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		log.Printf("Logout failed: %v", err)
	}
	s.mu.Lock()
	s.user = nil
	s.allUsers = []models.User{}
	s.mu.Unlock()
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// ---- 挂单 actions ----

// FetchListings 刷新挂单集合（服务层读失败已降级为空列表）
func (s *Store) FetchListings(ctx context.Context) {
	s.setLoading(true)
	items := s.listings.GetAll(ctx)
	s.mu.Lock()
	s.items = items
	s.loading = false
	s.mu.Unlock()
}

// AddListing 新挂单插到最前（集合按创建时间倒序）
func (s *Store) AddListing(l models.Listing) {
	s.mu.Lock()
	s.items = append([]models.Listing{l}, s.items...)
	s.mu.Unlock()
}

// UpdateListingInStore 用服务端返回的最新记录替换本地副本
func (s *Store) UpdateListingInStore(updated models.Listing) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == updated.ID {
			s.items[i] = updated
		}
	}
	s.mu.Unlock()
}

func (s *Store) RemoveListingFromStore(id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, l := range s.items {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.items = kept
	s.mu.Unlock()
}

// ---- 管理员 actions ----
// 这一组失败时只记日志，页面继续展示旧数据

func (s *Store) FetchAllUsers(ctx context.Context) {
	users, err := s.auth.GetAllUsers(ctx)
	if err != nil {
		log.Printf("Failed to fetch users: %v", err)
		return
	}
	s.mu.Lock()
	s.allUsers = users
	s.mu.Unlock()
}

// ToggleUserVerification 切换认证标记，同一个用户正在登录时同步会话对象
func (s *Store) ToggleUserVerification(ctx context.Context, id string) {
	updated, err := s.auth.ToggleUserVerification(ctx, id)
	if err != nil {
		log.Printf("Failed to toggle verification: %v", err)
		return
	}
	s.mergeUser(updated)
}

// SetPremiumStatus 审批高级卖家状态
func (s *Store) SetPremiumStatus(ctx context.Context, id string, status models.PremiumStatus) {
	updated, err := s.auth.ManagePremiumStatus(ctx, id, status)
	if err != nil {
		log.Printf("Failed to set premium status: %v", err)
		return
	}
	s.mergeUser(updated)
}

func (s *Store) mergeUser(updated *models.User) {
	s.mu.Lock()
	for i := range s.allUsers {
		if s.allUsers[i].ID == updated.ID {
			s.allUsers[i] = *updated
		}
	}
	if s.user != nil && s.user.ID == updated.ID {
		u := *updated
		s.user = &u
	}
	s.mu.Unlock()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
