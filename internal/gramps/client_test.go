package gramps_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"lineage/internal/config"
	"lineage/internal/gramps"
)

func testConfig(url string) config.Gramps {
	return config.Gramps{
		URL:             url,
		Username:        "tester",
		Password:        "secret",
		RequestTimeout:  5,
		RatePerSecond:   1000,
		RateBurst:       100,
		CacheTTLSeconds: 60,
	}
}

func writeToken(w http.ResponseWriter, token string) {
	_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
}

func TestTokenRefreshAfterRejection(t *testing.T) {
	var tokenCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			n := tokenCalls.Add(1)
			writeToken(w, fmt.Sprintf("token-%d", n))
		case "/api/metadata/":
			if r.Header.Get("Authorization") == "Bearer token-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := gramps.New(testConfig(server.URL), nil)
	if err := client.CheckConnection(context.Background()); err != nil {
		t.Fatalf("CheckConnection: %v", err)
	}
	if got := tokenCalls.Load(); got != 2 {
		t.Fatalf("token fetches = %d, want 2", got)
	}
}

func TestCreatePersonAcceptsBothResponseShapes(t *testing.T) {
	responses := []string{
		`{"handle": "H-OBJ"}`,
		`[{"handle": "H-LIST"}]`,
	}
	var call int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			writeToken(w, "token")
		case "/api/people/":
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method %s", r.Method)
			}
			fmt.Fprint(w, responses[call])
			call++
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := gramps.New(testConfig(server.URL), nil)
	person := gramps.NewPerson("John", "Smith", 1)

	handle, err := client.CreatePerson(context.Background(), person)
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if handle != "H-OBJ" {
		t.Fatalf("handle = %q, want H-OBJ", handle)
	}

	handle, err = client.CreatePerson(context.Background(), person)
	if err != nil {
		t.Fatalf("CreatePerson (list shape): %v", err)
	}
	if handle != "H-LIST" {
		t.Fatalf("handle = %q, want H-LIST", handle)
	}
}

func TestPeopleServedFromCache(t *testing.T) {
	var peopleCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/token/":
			writeToken(w, "token")
		case r.URL.Path == "/api/people/" && r.Method == http.MethodGet:
			peopleCalls.Add(1)
			fmt.Fprint(w, `[{"handle": "P1", "primary_name": {"first_name": "Rose", "surname_list": [{"surname": "Paradowski", "primary": true}]}, "gender": 0}]`)
		case r.URL.Path == "/api/people/" && r.Method == http.MethodPost:
			fmt.Fprint(w, `{"handle": "P2"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := gramps.New(testConfig(server.URL), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		people, err := client.People(ctx)
		if err != nil {
			t.Fatalf("People: %v", err)
		}
		if len(people) != 1 || people[0].DisplayName() != "Rose Paradowski" {
			t.Fatalf("unexpected people: %+v", people)
		}
	}
	if got := peopleCalls.Load(); got != 1 {
		t.Fatalf("people fetches = %d, want 1 (cache miss only)", got)
	}

	// creating a person invalidates the pool
	if _, err := client.CreatePerson(ctx, gramps.NewPerson("New", "Person", 2)); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if _, err := client.People(ctx); err != nil {
		t.Fatalf("People after create: %v", err)
	}
	if got := peopleCalls.Load(); got != 2 {
		t.Fatalf("people fetches = %d, want 2 after invalidation", got)
	}
}

func TestRequestFailureWrapsExternalService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token/" {
			writeToken(w, "token")
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	client := gramps.New(testConfig(server.URL), nil)
	if err := client.CheckConnection(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestPersonHelpers(t *testing.T) {
	person := gramps.Person{
		PrimaryName: gramps.Name{
			FirstName: "Mary",
			Surnames: []gramps.Surname{
				{Surname: "Johnson"},
				{Surname: "Smith", Primary: true},
			},
		},
		Attributes: []gramps.Attribute{{Type: "Maiden Name", Value: "Johnson"}},
	}
	if person.Surname() != "Smith" {
		t.Errorf("Surname = %q, want Smith", person.Surname())
	}
	if person.DisplayName() != "Mary Smith" {
		t.Errorf("DisplayName = %q", person.DisplayName())
	}
	if maiden, ok := person.Attribute("maiden name"); !ok || maiden != "Johnson" {
		t.Errorf("Attribute = %q, %v", maiden, ok)
	}

	family := gramps.Family{FatherHandle: "A", MotherHandle: "B"}
	if !family.SpousePair("B", "A") {
		t.Error("expected SpousePair to match either order")
	}
	if family.SpousePair("A", "C") {
		t.Error("unexpected SpousePair match")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want []any
		ok   bool
	}{
		{"2023-05-17", []any{17, 5, 2023, false}, true},
		{"May 17, 2023", []any{17, 5, 2023, false}, true},
		{"05/17/2023", []any{17, 5, 2023, false}, true},
		{"17 May 2023", []any{17, 5, 2023, false}, true},
		{"1948", []any{0, 0, 1948, false}, true},
		{"sometime in spring", nil, false},
		{"", nil, false},
	}
	for _, tc := range cases {
		date, ok := gramps.ParseDate(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if len(date.Dateval) != 4 {
			t.Errorf("ParseDate(%q) dateval length %d", tc.in, len(date.Dateval))
			continue
		}
		for i, want := range tc.want {
			if date.Dateval[i] != want {
				t.Errorf("ParseDate(%q) dateval[%d] = %v, want %v", tc.in, i, date.Dateval[i], want)
			}
		}
	}
}
