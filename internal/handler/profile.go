package handler

import (
	"strings"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/session"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// maxAvatarSize 头像上传上限
const maxAvatarSize = 5 << 20

type ProfileHandler struct {
	Session *session.Store
}

func NewProfileHandler(store *session.Store) *ProfileHandler {
	return &ProfileHandler{Session: store}
}

// updateEmailReq 修改登录邮箱
type updateEmailReq struct {
	Email string `json:"email" binding:"required"`
}

// changePasswordReq 修改密码
type changePasswordReq struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	util.Success(c, util.Response{"profile": h.Session.Profile()})
}

// Update 部分更新资料，未提供的字段保持不变
func (h *ProfileHandler) Update(c *gin.Context) {
	var upd domain.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Parâmetros inválidos")
		return
	}
	if upd.Empty() {
		badRequest(c, "Nenhum campo para atualizar")
		return
	}
	if t := upd.ThemePreference; t != nil && *t != domain.ThemeLight && *t != domain.ThemeDark {
		badRequest(c, "Tema inválido")
		return
	}

	if err := h.Session.UpdateProfile(c.Request.Context(), upd); err != nil {
		fail(c, err, "Erro ao atualizar perfil")
		return
	}
	h.Get(c)
}

func (h *ProfileHandler) UpdateEmail(c *gin.Context) {
	var req updateEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Informe o e-mail")
		return
	}
	email := strings.TrimSpace(req.Email)
	if err := util.ValidateEmail(email); err != nil {
		badRequest(c, "E-mail inválido")
		return
	}

	if err := h.Session.UpdateEmail(c.Request.Context(), email); err != nil {
		fail(c, err, "Erro ao atualizar e-mail")
		return
	}
	h.Get(c)
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Parâmetros inválidos")
		return
	}
	if req.Password != req.ConfirmPassword {
		badRequest(c, "As senhas não coincidem")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.Session.UpdatePassword(c.Request.Context(), req.Password); err != nil {
		fail(c, err, "Erro ao atualizar senha")
		return
	}
	util.Success(c, util.Response{})
}

// UploadAvatar 接收 multipart 字段 "file"
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Selecione uma imagem")
		return
	}
	if fh.Size > maxAvatarSize {
		badRequest(c, "Imagem muito grande (máx. 5MB)")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Não foi possível ler a imagem")
		return
	}
	defer f.Close()

	url, err := h.Session.UploadAvatar(c.Request.Context(), fh.Filename, f)
	if err != nil {
		fail(c, err, "Erro ao enviar avatar")
		return
	}
	util.Success(c, util.Response{"avatar_url": url, "profile": h.Session.Profile()})
}
