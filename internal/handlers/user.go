package handlers

import (
	"net/http"

	"nexusmarket/internal/middleware"
	"nexusmarket/internal/models"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"
	"nexusmarket/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// Dashboard 我的挂单
func (h *UserHandler) Dashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)

	h.store.FetchListings(c.Request.Context())
	mine := make([]models.Listing, 0)
	for _, l := range h.store.Listings() {
		if l.OwnerID == user.ID {
			mine = append(mine, l)
		}
	}
	OK(c, gin.H{"listings": mine})
}

// Profile 个人资料页，bio 按 Markdown 渲染
func (h *UserHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	OK(c, gin.H{
		"user":    user,
		"bioHtml": utils.RenderMarkdown(user.Bio),
	})
}

// UpdateProfile 更新 bio/email/头像，只提交有变化的字段
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var body struct {
		Bio       *string `json:"bio"`
		Email     *string `json:"email"`
		AvatarURL *string `json:"avatarUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		Fail(c, http.StatusBadRequest, "invalid form data")
		return
	}

	patch := services.ProfilePatch{Bio: body.Bio, Email: body.Email, AvatarURL: body.AvatarURL}
	if err := h.store.UpdateProfile(c.Request.Context(), patch); err != nil {
		Fail(c, http.StatusBadGateway, err.Error())
		return
	}
	OK(c, gin.H{"user": h.store.User()})
}

// ApplyPremium 申请高级卖家，状态进入 pending 等管理员审核
func (h *UserHandler) ApplyPremium(c *gin.Context) {
	if err := h.store.ApplyForPremium(c.Request.Context()); err != nil {
		Fail(c, http.StatusBadGateway, err.Error())
		return
	}
	OK(c, gin.H{"user": h.store.User()})
}
