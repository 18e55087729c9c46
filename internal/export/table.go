// Package export renders transactions and fixed example templates as
// spreadsheets (CSV or XLSX).
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/ledger"
)

// Kind selects the transaction projection.
type Kind string

const (
	Detailed Kind = "detailed"
	Summary  Kind = "summary"
)

// TransactionsSheet is the sheet name used for transaction exports.
const TransactionsSheet = "Transações"

// Formula is a spreadsheet formula such as "=B2-C2".
type Formula string

// Table is one sheet. Cells hold string, decimal.Decimal or Formula.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]any
}

// Options narrows the transactions that are exported. Zero values mean no
// restriction.
type Options struct {
	Start    time.Time
	End      time.Time
	Category string
}

// Transactions builds the detailed or summary projection of list.
func Transactions(list []domain.Transaction, kind Kind, opts Options) (Table, error) {
	filtered := ledger.Filter(list, opts.Start, opts.End, opts.Category)
	switch kind {
	case Detailed:
		return DetailedTable(filtered), nil
	case Summary:
		// 分类取自全部交易，合计只算筛选后的
		return SummaryTable(ledger.Categories(list), filtered), nil
	}
	return Table{}, fmt.Errorf("unknown export kind %q", kind)
}

// DetailedTable has one row per transaction.
func DetailedTable(list []domain.Transaction) Table {
	t := Table{
		Sheet:   TransactionsSheet,
		Columns: []string{"Data", "Tipo", "Categoria", "Descrição", "Valor"},
		Rows:    make([][]any, 0, len(list)),
	}
	for _, tx := range list {
		t.Rows = append(t.Rows, []any{
			tx.Date.Format("02/01/2006"),
			typeLabel(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount,
		})
	}
	return t
}

// SummaryTable totals list per category, one row per entry of categories.
func SummaryTable(categories []string, list []domain.Transaction) Table {
	t := Table{
		Sheet:   TransactionsSheet,
		Columns: []string{"Categoria", "Total"},
		Rows:    make([][]any, 0, len(categories)),
	}
	for _, c := range categories {
		t.Rows = append(t.Rows, []any{c, ledger.CategoryTotal(list, c)})
	}
	return t
}

func typeLabel(t domain.TxType) string {
	if t == domain.Income {
		return "Receita"
	}
	return "Despesa"
}

// FileName is "transacoes_<kind>_<unix-ms>.<ext>".
func FileName(kind Kind, format Format, now time.Time) string {
	return fmt.Sprintf("transacoes_%s_%d.%s", kind, now.UnixMilli(), format)
}

// TemplateFileName is "modelo_<template>_<unix-ms>.<ext>".
func TemplateFileName(name string, format Format, now time.Time) string {
	return fmt.Sprintf("modelo_%s_%d.%s", strings.ToLower(name), now.UnixMilli(), format)
}

func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.StringFixed(2)
	case Formula:
		return string(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
