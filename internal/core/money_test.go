package core

import (
	"encoding/json"
	"testing"
)

func mny(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func TestMoneyArithmetic(t *testing.T) {
	a := mny("100.10")
	b := mny("0.20")
	if got := a.Add(b).String(); got != "100.30" {
		t.Fatalf("add: got %s", got)
	}
	if got := a.Sub(b).String(); got != "99.90" {
		t.Fatalf("sub: got %s", got)
	}
	if got := b.Mul(3).String(); got != "0.60" {
		t.Fatalf("mul: got %s", got)
	}
	if got := mny("-5").Abs().String(); got != "5.00" {
		t.Fatalf("abs: got %s", got)
	}
}

func TestMoneyNoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3.
	sum := mny("0.1").Add(mny("0.2"))
	if sum.Cmp(mny("0.3")) != 0 {
		t.Fatalf("got %s", sum)
	}
}

func TestMoneyPercentOf(t *testing.T) {
	cases := []struct {
		part, total, want string
	}{
		{"50", "200", "25.00"},
		{"1", "3", "33.33"},
		{"10", "0", "0.00"},
		{"10", "-5", "0.00"},
		{"-20", "100", "-20.00"},
	}
	for i, tc := range cases {
		got := mny(tc.part).PercentOf(mny(tc.total)).String()
		if got != tc.want {
			t.Fatalf("case %d: got %s want %s", i, got, tc.want)
		}
	}
}

func TestMoneyClampAndDiv(t *testing.T) {
	if got := mny("-3.50").ClampZero().String(); got != "0.00" {
		t.Fatalf("clamp negative: got %s", got)
	}
	if got := mny("3.50").ClampZero().String(); got != "3.50" {
		t.Fatalf("clamp positive: got %s", got)
	}
	if got := mny("10").DivInt(0).String(); got != "0.00" {
		t.Fatalf("div zero: got %s", got)
	}
	if got := mny("10").DivInt(4).String(); got != "2.50" {
		t.Fatalf("div: got %s", got)
	}
	if got := mny("101").Half().String(); got != "50.50" {
		t.Fatalf("half: got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(mny("1234.5"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1234.50" {
		t.Fatalf("marshal: got %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte("99.9"), &m); err != nil {
		t.Fatal(err)
	}
	if m.Cmp(mny("99.9")) != 0 {
		t.Fatalf("number unmarshal: got %s", m)
	}
	if err := json.Unmarshal([]byte(`"42.01"`), &m); err != nil {
		t.Fatal(err)
	}
	if m.Cmp(mny("42.01")) != 0 {
		t.Fatalf("string unmarshal: got %s", m)
	}
	if err := json.Unmarshal([]byte("null"), &m); err != nil {
		t.Fatal(err)
	}
	if !m.IsZero() {
		t.Fatalf("null unmarshal: got %s", m)
	}
	if err := json.Unmarshal([]byte(`"nope"`), &m); err == nil {
		t.Fatalf("expected error for garbage")
	}
}
