package market

import (
	"fmt"
	"strings"
	"time"
)

// NewsItem is one headline.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
}

// NewsCategories lists the category filter options.
var NewsCategories = []string{AllCategories, "Ações", "Cripto", "Economia Global", "Brasil"}

type newsSeed struct {
	title, summary, source, category string
	hoursAgo                         int
}

var newsSeeds = []newsSeed{
	{"S&P 500 atinge novo recorde histórico impulsionado por resultados do setor de tecnologia",
		"Índice fecha com alta de 1.2% após balanços positivos das big techs superarem expectativas do mercado.",
		"Reuters", "Ações", 2},
	{"Bitcoin ultrapassa marca de $45.000 em movimento de recuperação",
		"Criptomoeda ganha 8% nas últimas 24 horas com otimismo renovado sobre ETFs de Bitcoin.",
		"CoinDesk", "Cripto", 4},
	{"FED mantém taxa de juros inalterada em 5.25% ao ano",
		"Decisão foi unânime entre membros do comitê, sinalizando pausa no ciclo de aperto monetário.",
		"Bloomberg", "Economia Global", 6},
	{"Petrobras anuncia dividendos extraordinários de R$ 15 bilhões",
		"Estatal distribui lucros recordes após trimestre excepcional de resultados operacionais.",
		"Valor Econômico", "Brasil", 8},
	{"Ethereum completa atualização importante da rede",
		"Nova versão promete reduzir taxas de transação e aumentar escalabilidade da blockchain.",
		"CoinTelegraph", "Cripto", 10},
	{"PIB brasileiro cresce 0.8% no trimestre, superando projeções",
		"Dados do IBGE mostram recuperação mais forte que esperada impulsionada pelo setor de serviços.",
		"Estadão", "Brasil", 12},
	{"Tesla reporta vendas recordes de veículos elétricos no último trimestre",
		"Montadora entrega 480 mil unidades, batendo estimativas de analistas por larga margem.",
		"CNBC", "Ações", 14},
	{"Inflação global desacelera pelo quarto mês consecutivo",
		"Dados de principais economias mostram tendência de arrefecimento dos preços ao consumidor.",
		"Financial Times", "Economia Global", 20},
}

// News returns headlines published relative to now, newest first, filtered
// by category and by search over title, summary and source.
func News(now time.Time, search, category string) []NewsItem {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]NewsItem, 0, len(newsSeeds))
	for i, s := range newsSeeds {
		if category != "" && category != AllCategories && s.category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.title), search) &&
			!strings.Contains(strings.ToLower(s.summary), search) &&
			!strings.Contains(strings.ToLower(s.source), search) {
			continue
		}
		id := fmt.Sprint(i + 1)
		out = append(out, NewsItem{
			ID:          id,
			Title:       s.title,
			Summary:     s.summary,
			URL:         "https://example.com/news/" + id,
			Source:      s.source,
			PublishedAt: now.Add(-time.Duration(s.hoursAgo) * time.Hour),
			Category:    s.category,
		})
	}
	return out
}

// RelativeTime renders the age of t like "há 3h".
func RelativeTime(now, t time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("há %dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("há %dh", int(diff.Hours()))
	default:
		return fmt.Sprintf("há %dd", int(diff.Hours())/24)
	}
}
