package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }
	t.Cleanup(func() { sleep = time.Sleep })

	if err := WaitFor(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 2*time.Second {
		t.Fatalf("expected 2s sleep, got %s", slept)
	}

	slept = 0
	if err := WaitFor(context.Background(), 0); err != nil || slept != 0 {
		t.Fatalf("zero duration must return immediately")
	}
}

func TestWaitForCancelled(t *testing.T) {
	block := make(chan struct{})
	sleep = func(time.Duration) { <-block }
	t.Cleanup(func() {
		close(block)
		sleep = time.Sleep
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWordRegexp(t *testing.T) {
	tests := []struct {
		word  string
		text  string
		match bool
	}{
		{word: "java", text: "опыт java от 3 лет", match: true},
		{word: "java", text: "javascript developer", match: false},
		{word: "go", text: "Golang/Go разработчик", match: true},
		{word: "go", text: "google cloud", match: false},
		{word: "c++", text: "знание C++ и Python", match: true},
		{word: "питон", text: "питонист", match: false},
		{word: "питон", text: "язык питон.", match: true},
	}

	for _, tt := range tests {
		t.Run(tt.word+"/"+tt.text, func(t *testing.T) {
			if got := WordRegexp(tt.word).MatchString(tt.text); got != tt.match {
				t.Fatalf("expected %v, got %v", tt.match, got)
			}
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	tests := map[string]struct {
		input  string
		limit  int
		expect string
	}{
		"non-positive limit":     {input: "резюме", limit: 0, expect: ""},
		"fits":                   {input: "  Go  ", limit: 10, expect: "Go"},
		"cuts runes, not bytes":  {input: "Разработчик Go", limit: 11, expect: "Разработчик..."},
		"exact length untouched": {input: "backend", limit: 7, expect: "backend"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
