package database

import "testing"

func TestDSN(t *testing.T) {
	s := Settings{User: "bus", Pass: "pw", Host: "db", Port: "3306", Name: "busres"}
	want := "bus:pw@tcp(db:3306)/busres?charset=utf8mb4&parseTime=true&loc=UTC"
	if got := s.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
	s.Pass = ""
	if got := s.DSN(); got != "bus@tcp(db:3306)/busres?charset=utf8mb4&parseTime=true&loc=UTC" {
		t.Fatalf("DSN() without password = %q", got)
	}
}
