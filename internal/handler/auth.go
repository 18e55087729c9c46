package handler

import (
	"net/http"
	"strings"

	"finance-dashboard/internal/session"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责登录/注册/演示/登出相关接口
type AuthHandler struct {
	Session *session.Store
}

func NewAuthHandler(store *session.Store) *AuthHandler {
	return &AuthHandler{Session: store}
}

type credentialsReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type demoReq struct {
	Email string `json:"email"`
}

type resetReq struct {
	Email string `json:"email" binding:"required"`
}

type confirmResetReq struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// State 返回当前会话、资料和加载状态
func (h *AuthHandler) State(c *gin.Context) {
	st := h.Session.State()
	util.Success(c, util.Response{
		"session": st.Session,
		"profile": st.Profile,
		"loading": st.Loading,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Informe e-mail e senha")
		return
	}

	if err := h.Session.SignIn(c.Request.Context(), strings.TrimSpace(req.Email), req.Password); err != nil {
		fail(c, err, "Erro ao fazer login")
		return
	}
	h.State(c)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Informe e-mail e senha")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := util.ValidateEmail(req.Email); err != nil {
		badRequest(c, "E-mail inválido")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.Session.SignUp(c.Request.Context(), req.Email, req.Password); err != nil {
		fail(c, err, "Erro ao criar conta")
		return
	}
	h.State(c)
}

// Demo 进入演示模式，不访问远端
func (h *AuthHandler) Demo(c *gin.Context) {
	var req demoReq
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)

	h.Session.SignInDemo(c.Request.Context(), strings.TrimSpace(req.Email))
	h.State(c)
}

// Logout 即使远端失败也会清空本地会话，此时仍返回成功并附带警告
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Session.SignOut(c.Request.Context()); err != nil {
		util.Success(c, util.Response{"warning": err.Error()})
		return
	}
	util.Success(c, util.Response{})
}

func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req resetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Informe o e-mail")
		return
	}
	if err := h.Session.RequestPasswordReset(c.Request.Context(), strings.TrimSpace(req.Email)); err != nil {
		fail(c, err, "Erro ao solicitar redefinição de senha")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"code": util.CodeOK, "data": util.Response{}})
}

// ConfirmReset 用邮件里的令牌设置新密码，不会自动登录
func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req confirmResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Informe o código e a nova senha")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		badRequest(c, "As senhas não coincidem")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.Session.ConfirmPasswordReset(c.Request.Context(), strings.TrimSpace(req.Token), req.Password); err != nil {
		fail(c, err, "Erro ao redefinir a senha")
		return
	}
	util.Success(c, util.Response{})
}
