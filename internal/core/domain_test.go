package core

import (
	"errors"
	"testing"
	"time"
)

func TestAccountValidate(t *testing.T) {
	good := Account{Code: "1001", Name: "Cash", Type: AccountAsset}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Account{
		{Code: "", Name: "Cash", Type: AccountAsset},
		{Code: "123456789012345678901", Name: "Cash", Type: AccountAsset}, // 21 chars
		{Code: "1001", Name: "", Type: AccountAsset},
		{Code: "1001", Name: "Cash", Type: "bank"},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2024, time.June, 1),
		Description: "Office rent",
		Amount:      mny("500"),
		Type:        Debit,
		AccountID:   1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Amount = mny("0")
	bad.AccountID = 0
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	fe, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %T", err)
	}
	if _, has := fe["amount"]; !has {
		t.Fatalf("expected amount error, got %v", fe)
	}
	if _, has := fe["account_id"]; !has {
		t.Fatalf("expected account_id error, got %v", fe)
	}
}

func TestProjectValidate(t *testing.T) {
	start := NewDate(2024, time.June, 1)
	end := NewDate(2024, time.May, 1)
	bad := Project{Code: "PRJ-001", Name: "Website", Status: StatusActive, StartDate: &start, EndDate: &end}
	err := bad.Validate()
	fe, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, has := fe["end_date"]; !has {
		t.Fatalf("expected end_date error, got %v", fe)
	}

	bad.EndDate = bad.StartDate // equal dates are allowed
	if err := bad.Validate(); err != nil {
		t.Fatalf("equal dates: got %v", err)
	}
}

func TestEmployeeValidate(t *testing.T) {
	good := Employee{EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Email = "not-an-email"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected email error")
	}
}

func TestDeductionValidate(t *testing.T) {
	good := Deduction{
		EmployeeID:  1,
		Amount:      mny("0.01"),
		Description: "Income tax",
		Date:        NewDate(2024, time.May, 1),
		Type:        DeductionTax,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Amount = mny("0.005")
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected amount error")
	}
}

func TestFieldErrorsSentinels(t *testing.T) {
	wrapped := errors.Join(ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected ErrNotFound match")
	}
	fe := FieldErrors{}
	fe.Add("code", "first")
	fe.Add("code", "second") // first message wins
	if fe["code"] != "first" {
		t.Fatalf("got %q", fe["code"])
	}
	if err := (FieldErrors{}).OrNil(); err != nil {
		t.Fatalf("empty OrNil: got %v", err)
	}
}
