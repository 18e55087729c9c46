package ledger

import "finance-dashboard/internal/domain"

// Apply folds one realtime event into list and returns the next list. The
// input slice is never modified.
//
// An insert whose id is already present is ignored: the add-then-refetch
// path and the insert event race, and either may land first.
func Apply(list []domain.Transaction, ev domain.Event[domain.Transaction]) []domain.Transaction {
	switch ev.Kind {
	case domain.Inserted:
		if indexOf(list, ev.Record.ID) >= 0 {
			return list
		}
		next := make([]domain.Transaction, 0, len(list)+1)
		next = append(next, ev.Record)
		return append(next, list...)

	case domain.Updated:
		i := indexOf(list, ev.Record.ID)
		if i < 0 {
			return list
		}
		next := append([]domain.Transaction(nil), list...)
		next[i] = ev.Record
		return next

	case domain.Removed:
		i := indexOf(list, ev.Record.ID)
		if i < 0 {
			return list
		}
		next := make([]domain.Transaction, 0, len(list)-1)
		next = append(next, list[:i]...)
		return append(next, list[i+1:]...)
	}
	return list
}

func indexOf(list []domain.Transaction, id string) int {
	if id == "" {
		return -1
	}
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}
