package handler

import (
	"strings"
	"time"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/middleware"
	"finance-dashboard/internal/portfolio"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InvestmentHandler struct {
	Portfolio *portfolio.Service
	Prices    *portfolio.PriceBoard
}

func NewInvestmentHandler(svc *portfolio.Service, prices *portfolio.PriceBoard) *InvestmentHandler {
	return &InvestmentHandler{Portfolio: svc, Prices: prices}
}

type investmentReq struct {
	Ticker            string `json:"ticker" binding:"required,max=12"`
	CompanyName       string `json:"company_name" binding:"max=128"`
	Quantity          string `json:"quantity" binding:"required"`
	PurchasePrice     string `json:"purchase_price" binding:"required"`
	PurchaseDate      string `json:"purchase_date"`
	DividendFrequency string `json:"dividend_frequency" binding:"omitempty,oneof=monthly quarterly semiannual annual"`
	DividendAmount    string `json:"dividend_amount"`
}

// List 返回持仓估值和汇总，并把持仓代码登记到价格面板
func (h *InvestmentHandler) List(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	list, err := h.Portfolio.List(c.Request.Context(), sess.ID)
	if err != nil {
		fail(c, err, "Erro ao carregar investimentos")
		return
	}

	h.Prices.Track(portfolio.Tickers(list)...)
	rows := portfolio.Valuate(list, h.Prices.Prices())
	util.Success(c, util.Response{
		"rows":    rows,
		"summary": portfolio.Totals(rows),
	})
}

func (h *InvestmentHandler) Create(c *gin.Context) {
	var req investmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Parâmetros inválidos")
		return
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil {
		badRequest(c, "Quantidade inválida")
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.PurchasePrice))
	if err != nil {
		badRequest(c, "Preço de compra inválido")
		return
	}

	in := domain.InvestmentInput{
		Ticker:            req.Ticker,
		CompanyName:       strings.TrimSpace(req.CompanyName),
		Quantity:          qty,
		PurchasePrice:     price,
		PurchaseDate:      time.Now(),
		DividendFrequency: req.DividendFrequency,
	}
	if req.PurchaseDate != "" {
		if in.PurchaseDate, err = util.ParseDate(req.PurchaseDate); err != nil {
			badRequest(c, "Data de compra inválida")
			return
		}
	}
	if s := strings.TrimSpace(req.DividendAmount); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			badRequest(c, "Valor de dividendo inválido")
			return
		}
		in.DividendAmount = &d
	}

	sess, _ := middleware.CurrentSession(c)
	inv, err := h.Portfolio.Add(c.Request.Context(), sess.ID, in)
	if err != nil {
		fail(c, err, "Erro ao adicionar investimento")
		return
	}
	h.Prices.Track(inv.Ticker)
	util.Success(c, util.Response{"investment": inv})
}

func (h *InvestmentHandler) Delete(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	if err := h.Portfolio.Remove(c.Request.Context(), sess.ID, c.Param("id")); err != nil {
		fail(c, err, "Erro ao remover investimento")
		return
	}
	util.Success(c, util.Response{})
}
