package handler

import (
	"errors"
	"net/http"

	"finance-dashboard/internal/budget"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/objectstore"
	"finance-dashboard/internal/portfolio"
	"finance-dashboard/internal/remote"
	"finance-dashboard/internal/remote/gormstore"
	"finance-dashboard/internal/remote/memstore"
	"finance-dashboard/internal/session"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// fail 把领域错误映射为统一错误返回。msg 是给用户看的文案，
// 凭证类错误直接返回原因。
func fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, remote.ErrInvalidCredentials),
		errors.Is(err, gormstore.ErrAccountLocked),
		errors.Is(err, gormstore.ErrInvalidResetToken):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, err.Error())
	case errors.Is(err, remote.ErrNotAuthenticated),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, ledger.ErrNoSession):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado")
	case errors.Is(err, remote.ErrForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, msg)
	case errors.Is(err, remote.ErrNotFound), errors.Is(err, objectstore.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, msg)
	case errors.Is(err, remote.ErrEmailTaken),
		errors.Is(err, budget.ErrModelName),
		errors.Is(err, budget.ErrTotalShare),
		errors.Is(err, portfolio.ErrInvalidTicker),
		errors.Is(err, portfolio.ErrInvalidQuantity),
		errors.Is(err, portfolio.ErrInvalidPrice),
		errors.Is(err, objectstore.ErrInvalidKey),
		errors.Is(err, session.ErrEmptyAvatarKey):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, memstore.ErrUnsupported), errors.Is(err, session.ErrNoObjectStore):
		util.Error(c, http.StatusNotImplemented, util.CodeUnavailable, err.Error())
	default:
		l := logger.FromContext(c.Request.Context())
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
	}
}

func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
}
