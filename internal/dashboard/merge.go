package dashboard

import "fintrack/internal/core"

// mergeRecent merges two newest-first lists into one newest-first list of at
// most limit entries. On equal dates the income entry comes first.
func mergeRecent(incomes, expenses []core.Transaction, limit int) []core.Transaction {
	out := make([]core.Transaction, 0, min(limit, len(incomes)+len(expenses)))
	i, j := 0, 0
	for len(out) < limit && (i < len(incomes) || j < len(expenses)) {
		takeIncome := j >= len(expenses) ||
			(i < len(incomes) && !expenses[j].Date.After(incomes[i].Date))
		if takeIncome {
			tx := incomes[i]
			tx.Kind = core.Income
			out = append(out, tx)
			i++
		} else {
			tx := expenses[j]
			tx.Kind = core.Expense
			out = append(out, tx)
			j++
		}
	}
	return out
}
