package core

import (
	"testing"
	"time"
)

func testEmployee(hire Date, salary string) Employee {
	s := mny(salary)
	return Employee{ID: 1, FirstName: "Asha", LastName: "Verma", HireDate: &hire, Salary: &s}
}

func TestMonthsWorked(t *testing.T) {
	cases := []struct {
		hire, asOf Date
		want       int
	}{
		{NewDate(2024, time.March, 20), NewDate(2024, time.September, 15), 6}, // partial month counts
		{NewDate(2024, time.March, 20), NewDate(2024, time.September, 20), 7},
		{NewDate(2024, time.June, 1), NewDate(2024, time.June, 1), 1}, // hired today
		{NewDate(2024, time.June, 1), NewDate(2024, time.May, 31), 0}, // hired in the future
	}
	for i, tc := range cases {
		if got := MonthsWorked(tc.hire, tc.asOf); got != tc.want {
			t.Fatalf("case %d: got %d want %d", i, got, tc.want)
		}
	}
}

func TestExpectedSalary(t *testing.T) {
	e := testEmployee(NewDate(2024, time.March, 20), "3000")
	if got := ExpectedSalary(e, NewDate(2024, time.September, 15)).String(); got != "18000.00" {
		t.Fatalf("got %s", got)
	}

	if got := ExpectedSalary(Employee{}, NewDate(2024, time.September, 15)); !got.IsZero() {
		t.Fatalf("no hire date: got %s", got)
	}
	zero := mny("0")
	hire := NewDate(2024, time.March, 20)
	e2 := Employee{HireDate: &hire, Salary: &zero}
	if got := ExpectedSalary(e2, NewDate(2024, time.September, 15)); !got.IsZero() {
		t.Fatalf("zero salary: got %s", got)
	}
}

func TestExpectedSalaryForYear(t *testing.T) {
	cases := []struct {
		hire string
		fy   string
		want string
	}{
		{"2023-01-10", "2024-2025", "36000.00"}, // hired before window: full 12 months
		{"2024-07-01", "2024-2025", "27000.00"}, // Jul 1 to Mar 31: 8 whole + partial = 9
		{"2025-06-01", "2024-2025", "0.00"},     // hired after window end
		{"2023-01-10", "FY2024", "0.00"},        // no derivable window
	}
	for i, tc := range cases {
		hire, err := ParseDate(tc.hire)
		if err != nil {
			t.Fatal(err)
		}
		e := testEmployee(hire, "3000")
		if got := ExpectedSalaryForYear(e, tc.fy).String(); got != tc.want {
			t.Fatalf("case %d: got %s want %s", i, got, tc.want)
		}
	}
}

func TestOutstanding(t *testing.T) {
	e := testEmployee(NewDate(2024, time.March, 20), "3000")
	asOf := NewDate(2024, time.September, 15) // 6 months accrued

	if got := Outstanding(e, mny("10000"), asOf).String(); got != "8000.00" {
		t.Fatalf("got %s", got)
	}
	// Overpayment stays negative on the employee figure.
	if got := Outstanding(e, mny("20000"), asOf).String(); got != "-2000.00" {
		t.Fatalf("overpaid: got %s", got)
	}
	// The financial-year summary clamps at zero instead.
	e2 := testEmployee(NewDate(2023, time.January, 10), "3000")
	if got := OutstandingForYear(e2, mny("40000"), "2024-2025").String(); got != "0.00" {
		t.Fatalf("fy overpaid: got %s", got)
	}
	if got := OutstandingForYear(e2, mny("30000"), "2024-2025").String(); got != "6000.00" {
		t.Fatalf("fy: got %s", got)
	}
}

func TestAnnualExpectedSalary(t *testing.T) {
	e := testEmployee(NewDate(2024, time.March, 20), "2500")
	if got := AnnualExpectedSalary(e).String(); got != "30000.00" {
		t.Fatalf("got %s", got)
	}
	if got := AnnualExpectedSalary(Employee{}); !got.IsZero() {
		t.Fatalf("no salary: got %s", got)
	}
}
