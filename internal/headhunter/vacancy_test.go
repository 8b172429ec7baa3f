package headhunter

import (
	"path/filepath"
	"testing"
)

func float(v float64) *float64 { return &v }

func TestReportByEmployer(t *testing.T) {
	vacancies := &Vacancies{
		Items: []*Vacancy{
			{
				ID:           "1",
				Name:         "Go Developer",
				Employer:     Employer{ID: "emp1", Name: "Acme"},
				AlternateURL: "https://example.com",
				Area:         Area{Name: "Moscow"},
				Salary:       &Salary{From: float(200000), Currency: "RUR"},
				Snippet: Snippet{
					Requirement:    "Strong Go skills",
					Responsibility: "Build services",
				},
			},
			{
				ID:       "2",
				Name:     "Python Developer",
				Employer: Employer{ID: "emp1", Name: "Acme"},
			},
		},
	}

	report := vacancies.ReportByEmployer()

	entries, ok := report["Acme (emp1)"]
	if !ok {
		t.Fatalf("expected employer key in report")
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["salary"] != "200000-? RUR" {
		t.Fatalf("unexpected salary: %q", entries[0]["salary"])
	}
	if entries[1]["salary"] != "not specified" {
		t.Fatalf("unexpected salary for vacancy without salary: %q", entries[1]["salary"])
	}
}

func TestDropPreservesOrder(t *testing.T) {
	vacancies := &Vacancies{Items: []*Vacancy{
		{ID: "1"}, {ID: "2", HasTest: true}, {ID: "3"}, {ID: "4", HasTest: true}, {ID: "5"},
	}}

	dropped := vacancies.ExcludeWithTest()
	if len(dropped) != 2 || dropped[0] != "2" || dropped[1] != "4" {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}

	ids := vacancies.IDs()
	want := []string{"1", "3", "5"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestExcludeEmployers(t *testing.T) {
	vacancies := &Vacancies{Items: []*Vacancy{
		{ID: "1", Employer: Employer{ID: "a"}},
		{ID: "2", Employer: Employer{ID: "b"}},
		{ID: "3", Employer: Employer{ID: "a"}},
	}}

	dropped := vacancies.ExcludeEmployers([]string{"a"})
	if len(dropped) != 2 {
		t.Fatalf("expected 2 dropped, got %v", dropped)
	}
	if vacancies.Len() != 1 || vacancies.Items[0].ID != "2" {
		t.Fatalf("unexpected vacancies left: %v", vacancies.IDs())
	}
}

func TestHasSalary(t *testing.T) {
	cases := []struct {
		name string
		v    *Vacancy
		want bool
	}{
		{name: "no salary", v: &Vacancy{}, want: false},
		{name: "empty salary", v: &Vacancy{Salary: &Salary{Currency: "RUR"}}, want: false},
		{name: "only to", v: &Vacancy{Salary: &Salary{To: float(100)}}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.HasSalary(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPublished(t *testing.T) {
	for _, raw := range []string{"2024-01-15T10:30:00+0300", "2024-01-15T10:30:00+03:00"} {
		v := &Vacancy{PublishedAt: raw}
		got, err := v.Published()
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got.UTC().Hour() != 7 {
			t.Fatalf("unexpected time for %q: %s", raw, got)
		}
	}

	if _, err := (&Vacancy{PublishedAt: "yesterday"}).Published(); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}

func TestExcludedVacanciesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	missing, err := GetExcludedVacanciesFromFile(path)
	if err != nil {
		t.Fatalf("missing file must be an empty list: %v", err)
	}
	if len(missing.Items) != 0 {
		t.Fatalf("expected empty list")
	}

	vacancies := &Vacancies{Items: []*Vacancy{{ID: "1"}, {ID: "2"}}}
	missing.Append(vacancies.ToExcluded("manual"))
	missing.Append(vacancies.ToExcluded("manual"))

	if err := missing.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := GetExcludedVacanciesFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	ids := loaded.VacanciesIDs()
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if loaded.Items[0].Reason != "manual" {
		t.Fatalf("unexpected reason: %q", loaded.Items[0].Reason)
	}
}
