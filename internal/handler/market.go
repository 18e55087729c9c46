package handler

import (
	"net/http"
	"strings"
	"time"

	"finance-dashboard/internal/market"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// MarketHandler 行情和新闻都是静态模拟数据，无需登录
type MarketHandler struct {
	now func() time.Time
}

func NewMarketHandler() *MarketHandler {
	return &MarketHandler{now: time.Now}
}

type newsItemResp struct {
	market.NewsItem
	Age string `json:"age"`
}

func (h *MarketHandler) Quotes(c *gin.Context) {
	list := market.Quotes(c.Query("search"), c.Query("sector"))
	util.Success(c, util.Response{
		"quotes":  list,
		"sectors": market.Sectors,
	})
}

func (h *MarketHandler) Quote(c *gin.Context) {
	q, ok := market.Lookup(strings.TrimSpace(c.Param("ticker")))
	if !ok {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Ativo não encontrado")
		return
	}
	util.Success(c, util.Response{"quote": q, "rising": q.Rising()})
}

func (h *MarketHandler) News(c *gin.Context) {
	now := h.now()
	items := market.News(now, c.Query("search"), c.Query("category"))
	out := make([]newsItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, newsItemResp{NewsItem: it, Age: market.RelativeTime(now, it.PublishedAt)})
	}
	util.Success(c, util.Response{
		"news":       out,
		"categories": market.NewsCategories,
	})
}
