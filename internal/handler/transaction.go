package handler

import (
	"strings"
	"time"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/session"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler 负责收支记录相关接口，读写都经过交易缓存
type TransactionHandler struct {
	Ledger  *ledger.Cache
	Session *session.Store
	now     func() time.Time
}

func NewTransactionHandler(cache *ledger.Cache, store *session.Store) *TransactionHandler {
	return &TransactionHandler{Ledger: cache, Session: store, now: time.Now}
}

// transactionReq 金额为正数的量级，支出会在创建时取反
type transactionReq struct {
	Type        string `json:"type" binding:"required,oneof=income expense"`
	Amount      string `json:"amount" binding:"required"`
	Date        string `json:"date"`
	Description string `json:"description" binding:"max=255"`
	Category    string `json:"category" binding:"max=32"`
}

func (h *TransactionHandler) parseInput(c *gin.Context) (domain.TransactionInput, bool) {
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Parâmetros inválidos")
		return domain.TransactionInput{}, false
	}

	req.Category = strings.TrimSpace(req.Category)
	if err := util.ValidateCategory(req.Category); err != nil {
		badRequest(c, "Selecione uma categoria")
		return domain.TransactionInput{}, false
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || util.ValidateAmount(amount) != nil {
		badRequest(c, "Informe um valor válido")
		return domain.TransactionInput{}, false
	}

	// 日期默认今天
	date := h.now()
	if req.Date != "" {
		if date, err = util.ParseDate(req.Date); err != nil {
			badRequest(c, "Data inválida")
			return domain.TransactionInput{}, false
		}
	}

	in, err := domain.NewTransactionInput(domain.TxType(req.Type), amount, date, strings.TrimSpace(req.Description), req.Category)
	if err != nil {
		badRequest(c, err.Error())
		return domain.TransactionInput{}, false
	}
	return in, true
}

// parseRange 读取 start/end/category 查询参数；纯日期的 end 包含当天
func parseRange(c *gin.Context) (start, end time.Time, category string, ok bool) {
	var err error
	if s := c.Query("start"); s != "" {
		if start, err = util.ParseDate(s); err != nil {
			badRequest(c, "Data inicial inválida")
			return
		}
	}
	if s := c.Query("end"); s != "" {
		if end, err = util.ParseDate(s); err != nil {
			badRequest(c, "Data final inválida")
			return
		}
		if len(s) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
	}
	category = strings.TrimSpace(c.Query("category"))
	ok = true
	return
}

func (h *TransactionHandler) List(c *gin.Context) {
	start, end, category, ok := parseRange(c)
	if !ok {
		return
	}
	list := h.Ledger.Filter(start, end, category)
	util.Success(c, util.Response{
		"transactions": list,
		"total":        len(list),
		"loading":      h.Ledger.Loading(),
	})
}

func (h *TransactionHandler) Create(c *gin.Context) {
	in, ok := h.parseInput(c)
	if !ok {
		return
	}
	tx, err := h.Ledger.Add(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Erro ao adicionar transação")
		return
	}
	util.Success(c, util.Response{"transaction": tx})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	in, ok := h.parseInput(c)
	if !ok {
		return
	}
	if err := h.Ledger.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		fail(c, err, "Erro ao atualizar transação")
		return
	}
	util.Success(c, util.Response{})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.Ledger.Remove(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, "Erro ao remover transação")
		return
	}
	util.Success(c, util.Response{})
}

// Summary 仪表盘汇总：余额、本月收支、分类合计
func (h *TransactionHandler) Summary(c *gin.Context) {
	currency := ""
	if p := h.Session.Profile(); p != nil {
		currency = p.DefaultCurrency
	}

	list := h.Ledger.Snapshot()
	balance := ledger.Balance(list)
	month := ledger.MonthSummary(list, h.now())

	util.Success(c, util.Response{
		"balance":           balance,
		"balance_formatted": util.FormatMoney(balance, currency),
		"month_income":      month.Income,
		"month_expense":     month.Expense,
		"by_category":       ledger.CategoryTotals(list),
		"categories":        ledger.Categories(list),
		"suggestions":       domain.CategorySuggestions,
		"count":             len(list),
		"loading":           h.Ledger.Loading(),
	})
}
