package middleware

import (
	"net/http"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/session"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the current domain.Session.
const SessionKey = "currentSession"

// RequireSession 要求进程当前持有会话，并把会话放进 context。
// 会话仍在恢复中时返回 503，让前端稍后重试。
func RequireSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store.Loading() {
			util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "Sessão carregando, tente novamente")
			return
		}

		sess := store.Current()
		if sess == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado")
			return
		}

		c.Set(SessionKey, *sess)
		c.Next()
	}
}

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return domain.Session{}, false
	}
	sess, ok := v.(domain.Session)
	return sess, ok
}
