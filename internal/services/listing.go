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

const listingsTable = "listings"

// ListingService 挂单相关操作的门面：调远端、过字段映射、做本地前置鉴权
type ListingService struct {
	remote *remote.Client
}

func NewListingService(rc *remote.Client) *ListingService {
	return &ListingService{remote: rc}
}

// GetAll 返回全部挂单，按创建时间倒序。读路径降级：远端失败时返回空列表
func (s *ListingService) GetAll(ctx context.Context) []models.Listing {
	data, err := s.remote.Select(ctx, listingsTable, remote.Query{Order: "created_at.desc"})
	if err != nil {
		log.Printf("Error fetching listings: %v", err)
		return []models.Listing{}
	}

	var records []models.ListingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("Error decoding listings: %v", err)
		return []models.Listing{}
	}

	listings := make([]models.Listing, 0, len(records))
	for _, r := range records {
		listings = append(listings, r.Entity())
	}
	return listings
}

// GetByID 按 id 查询单条挂单，未命中返回 ErrListingNotFound
func (s *ListingService) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	data, err := s.remote.SelectSingle(ctx, listingsTable, remote.Query{Eq: map[string]string{"id": id}})
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return decodeListing(data)
}

// Create 发布挂单。id 和时间戳由服务端分配，featured 创建时强制为 false
func (s *ListingService) Create(ctx context.Context, form models.ListingForm, ownerID string) (*models.Listing, error) {
	data, err := s.remote.Insert(ctx, listingsTable, form.Record(ownerID))
	if err != nil {
		return nil, err
	}
	return decodeListing(data)
}

// Update 部分更新。非管理员先做属主前置检查，不匹配时不发写请求直接报错。
// 这个检查只是为了给用户更快的提示，权威校验仍在远端。
func (s *ListingService) Update(ctx context.Context, id string, patch models.ListingPatch, requestorID string, requestorRole models.Role) (*models.Listing, error) {
	if requestorRole != models.RoleAdmin {
		if err := s.checkOwner(ctx, id, requestorID); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]any, len(patch)+1)
	for key, val := range patch {
		updates[utils.CamelToSnake(key)] = val
	}
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	data, err := s.remote.Update(ctx, listingsTable, remote.Query{Eq: map[string]string{"id": id}}, updates)
	if err != nil {
		return nil, err
	}
	return decodeListing(data)
}

// Delete 删除挂单，和 Update 一样的属主前置检查
func (s *ListingService) Delete(ctx context.Context, id, requestorID string, requestorRole models.Role) error {
	if requestorRole != models.RoleAdmin {
		if err := s.checkOwner(ctx, id, requestorID); err != nil {
			return err
		}
	}
	return s.remote.Delete(ctx, listingsTable, remote.Query{Eq: map[string]string{"id": id}})
}

// ToggleFeature 读当前 featured 再写反值。读和写之间没有事务，
// 并发切换同一条挂单可能丢失一次更新
func (s *ListingService) ToggleFeature(ctx context.Context, id string) (*models.Listing, error) {
	data, err := s.remote.SelectSingle(ctx, listingsTable, remote.Query{
		Select: "featured",
		Eq:     map[string]string{"id": id},
	})
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	var current struct {
		Featured bool `json:"featured"`
	}
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, fmt.Errorf("decode featured flag: %w", err)
	}

	updated, err := s.remote.Update(ctx, listingsTable,
		remote.Query{Eq: map[string]string{"id": id}},
		map[string]any{"featured": !current.Featured})
	if err != nil {
		return nil, err
	}
	return decodeListing(updated)
}

func (s *ListingService) checkOwner(ctx context.Context, id, requestorID string) error {
	data, err := s.remote.SelectSingle(ctx, listingsTable, remote.Query{
		Select: "owner_id",
		Eq:     map[string]string{"id": id},
	})
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}

	var current struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(data, &current); err != nil {
		return fmt.Errorf("decode owner: %w", err)
	}
	if current.OwnerID != requestorID {
		return ErrNotOwner
	}
	return nil
}

func decodeListing(data []byte) (*models.Listing, error) {
	var r models.ListingRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	l := r.Entity()
	return &l, nil
}
