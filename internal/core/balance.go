package core

// AccountBalance computes an account's balance: opening balance plus
// credits minus debits over the supplied transactions. The sum is
// commutative, so iteration order never changes the result. The full
// precision is retained; round only at the reporting edge.
func AccountBalance(a Account, txs []Transaction) Money {
	return a.OpeningBalance.Add(TransactionNet(txs))
}

// TransactionNet is the signed credit-minus-debit sum of transactions,
// with no opening balance. The dashboard's filtered per-type totals use
// this directly, which deliberately differs from AccountBalance.
func TransactionNet(txs []Transaction) Money {
	var net Money
	for _, t := range txs {
		if t.Type == Credit {
			net = net.Add(t.Amount)
		} else {
			net = net.Sub(t.Amount)
		}
	}
	return net
}

// SumByType partitions transactions into credit (income) and debit
// (expense) totals.
func SumByType(txs []Transaction) (income, expense Money) {
	for _, t := range txs {
		if t.Type == Credit {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

// OpeningTransaction builds the synthetic ledger entry emitted when an
// account opens with a non-zero balance: credit when positive, debit when
// negative, dated now and tagged with the OPENING reference.
func OpeningTransaction(a Account, today Date) Transaction {
	typ := Credit
	if a.OpeningBalance.IsNegative() {
		typ = Debit
	}
	return Transaction{
		Date:        today,
		Description: "Opening Balance",
		Amount:      a.OpeningBalance.Abs(),
		Type:        typ,
		AccountID:   a.ID,
		Reference:   OpeningReference,
	}
}
