package export

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Template names.
const (
	TemplateInvestments = "Investimentos"
	TemplateIncome      = "Entradas"
	TemplateExpenses    = "Saídas"
	TemplateBudget      = "Orçamento"
	TemplateGoals       = "Metas"
)

// TemplateNames lists the templates in menu order.
var TemplateNames = []string{TemplateInvestments, TemplateIncome, TemplateExpenses, TemplateBudget, TemplateGoals}

func num(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Template returns the example sheet called name.
func Template(name string) (Table, error) {
	t := Table{Sheet: name}
	switch name {
	case TemplateInvestments:
		t.Columns = []string{"Ticker", "Quantidade", "Preço de Compra", "Preço Atual", "Dividendos", "Lucro/Prejuízo"}
		t.Rows = [][]any{
			{"PETR4", num("100"), num("35.5"), num("36.8"), num("0.8"), Formula("=(D2-C2)*B2")},
			{"ITUB4", num("50"), num("28.2"), num("30.1"), num("0.4"), Formula("=(D3-C3)*B3")},
		}
	case TemplateIncome:
		t.Columns = []string{"Data", "Categoria", "Descrição", "Valor"}
		t.Rows = [][]any{
			{"2025-10-01", "Salário", "Salário Mensal", num("5000")},
			{"2025-10-10", "Freelance", "Projeto X", num("1200")},
		}
	case TemplateExpenses:
		t.Columns = []string{"Data", "Categoria", "Descrição", "Valor"}
		t.Rows = [][]any{
			{"2025-10-05", "Alimentação", "Supermercado", num("350")},
			{"2025-10-08", "Transporte", "Combustível", num("200")},
		}
	case TemplateBudget:
		t.Columns = []string{"Categoria", "Limite", "Gasto", "Saldo"}
		t.Rows = [][]any{
			{"Alimentação", num("1200"), num("350"), Formula("=B2-C2")},
			{"Transporte", num("600"), num("200"), Formula("=B3-C3")},
		}
	case TemplateGoals:
		t.Columns = []string{"Objetivo", "Valor Alvo", "Acumulado", "Progresso"}
		t.Rows = [][]any{
			{"Comprar carro", num("60000"), num("15000"), Formula("=C2/B2")},
			{"Reserva de emergência", num("30000"), num("9000"), Formula("=C3/B3")},
		}
	default:
		return Table{}, fmt.Errorf("unknown template %q", name)
	}
	return t, nil
}
