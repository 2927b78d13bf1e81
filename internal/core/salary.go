package core

// MonthsWorked counts the months an employee accrues salary for between
// hire date and asOf: whole calendar months plus one for the partial
// current month. Hired-today employees accrue one month.
func MonthsWorked(hire, asOf Date) int {
	if asOf.Before(hire.Time) {
		return 0
	}
	return WholeMonthsBetween(hire, asOf) + 1
}

// ExpectedSalary is the accrued salary to asOf: monthly rate times months
// worked. Employees without a hire date or salary accrue nothing.
func ExpectedSalary(e Employee, asOf Date) Money {
	if e.HireDate == nil || e.Salary == nil || e.Salary.IsZero() {
		return Money{}
	}
	return e.Salary.Mul(int64(MonthsWorked(*e.HireDate, asOf)))
}

// ExpectedSalaryForYear accrues within one financial year's April–March
// window. The hire date is clipped to the window start when earlier;
// employees hired after the window end accrue nothing. Labels without a
// derivable window (not "YYYY-YYYY") also accrue nothing.
func ExpectedSalaryForYear(e Employee, financialYear string) Money {
	if e.HireDate == nil || e.Salary == nil || e.Salary.IsZero() {
		return Money{}
	}
	fyStart, fyEnd, ok := FYWindow(financialYear)
	if !ok {
		return Money{}
	}
	if e.HireDate.After(fyEnd.Time) {
		return Money{}
	}
	start := fyStart
	if e.HireDate.After(fyStart.Time) {
		start = *e.HireDate
	}
	return e.Salary.Mul(int64(MonthsWorked(start, fyEnd)))
}

// Outstanding is accrued-to-date salary minus total paid. It may be
// negative: an overpaid employee shows a negative outstanding figure on
// the employee record. Only the financial-year summary clamps at zero.
func Outstanding(e Employee, totalPaid Money, asOf Date) Money {
	return ExpectedSalary(e, asOf).Sub(totalPaid)
}

// OutstandingForYear is the financial-year variant. Unlike Outstanding it
// never reports an overpayment: the figure is clamped at zero and rounded
// for the summary report.
func OutstandingForYear(e Employee, totalPaid Money, financialYear string) Money {
	return ExpectedSalaryForYear(e, financialYear).Sub(totalPaid).ClampZero().Round2()
}

// AnnualExpectedSalary is twelve months of the employee's rate, used by
// the employee salary report's year-scale outstanding and progress
// figures.
func AnnualExpectedSalary(e Employee) Money {
	if e.Salary == nil {
		return Money{}
	}
	return e.Salary.Mul(12)
}
