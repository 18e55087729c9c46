package handler

import (
	"net/http"
	"strings"

	"finance-dashboard/internal/budget"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 按百分比划分余额
type BudgetHandler struct {
	Models *budget.Models
	Ledger *ledger.Cache
}

func NewBudgetHandler(models *budget.Models, cache *ledger.Cache) *BudgetHandler {
	return &BudgetHandler{Models: models, Ledger: cache}
}

// Allocation 使用 ?model= 指定的模型，否则使用默认 50/30/20
func (h *BudgetHandler) Allocation(c *gin.Context) {
	name := "Padrão"
	cats := budget.DefaultCategories()
	if q := strings.TrimSpace(c.Query("model")); q != "" {
		m, ok := h.Models.Get(q)
		if !ok {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Modelo não encontrado")
			return
		}
		name, cats = m.Name, m.Categories
	}

	list := h.Ledger.Snapshot()
	balance := ledger.Balance(list)
	util.Success(c, util.Response{
		"model":       name,
		"balance":     balance,
		"total":       budget.TotalPercentage(cats),
		"allocations": budget.Allocate(balance, cats, list),
	})
}

func (h *BudgetHandler) ListModels(c *gin.Context) {
	util.Success(c, util.Response{"models": h.Models.List()})
}

func (h *BudgetHandler) SaveModel(c *gin.Context) {
	var m budget.Model
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, "Parâmetros inválidos")
		return
	}
	m.Name = strings.TrimSpace(m.Name)
	if err := h.Models.Save(m); err != nil {
		fail(c, err, "Erro ao salvar modelo")
		return
	}
	util.Success(c, util.Response{"model": m})
}
