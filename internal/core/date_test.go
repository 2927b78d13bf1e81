package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-20")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-03-20" {
		t.Fatalf("got %s", d)
	}
	if _, err := ParseDate("20/03/2024"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, time.April, 1))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-04-01"` {
		t.Fatalf("marshal: got %s", b)
	}
	b, err = json.Marshal(Date{})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "null" {
		t.Fatalf("zero marshal: got %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-12-31"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-12-31" {
		t.Fatalf("unmarshal: got %s", d)
	}
	if err := json.Unmarshal([]byte("null"), &d); err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Fatalf("null unmarshal: got %s", d)
	}
}

func TestWholeMonthsBetween(t *testing.T) {
	cases := []struct {
		a, b Date
		want int
	}{
		{NewDate(2024, time.March, 20), NewDate(2024, time.September, 15), 5}, // partial month dropped
		{NewDate(2024, time.March, 20), NewDate(2024, time.September, 20), 6},
		{NewDate(2024, time.March, 20), NewDate(2024, time.September, 25), 6},
		{NewDate(2024, time.January, 15), NewDate(2024, time.January, 15), 0},
		{NewDate(2024, time.January, 15), NewDate(2024, time.January, 10), 0}, // b before a
		{NewDate(2023, time.November, 1), NewDate(2024, time.February, 1), 3},
		{NewDate(2020, time.June, 30), NewDate(2024, time.June, 29), 47},
	}
	for i, tc := range cases {
		if got := WholeMonthsBetween(tc.a, tc.b); got != tc.want {
			t.Fatalf("case %d: got %d want %d", i, got, tc.want)
		}
	}
}
