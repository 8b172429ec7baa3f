package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/apply"
	"github.com/spigell/hh-scout/internal/profile"
	"github.com/spigell/hh-scout/internal/scheduler"
)

const testConfig = `
user-agent: test-agent
exclude-file: excluded.json
profile:
  resume-file: resume.txt
apply:
  resume: Go Developer
  selection: top5
  interval: 3s
  exclude:
    employers: ["42"]
redis:
  url: redis://localhost:6379/0
  profile-ttl: 12h
schedule:
  spec: "30 8 * * 1-5"
  timezone: UTC
  digest-size: 7
  user-pause: 500ms
scoring:
  concurrency: 8
`

func readTestConfig(t *testing.T, content string) *Config {
	t.Helper()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "hh-scout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	return config
}

func TestGetConfig(t *testing.T) {
	config := readTestConfig(t, testConfig)

	if config.UserAgent != "test-agent" || config.ExcludeFile != "excluded.json" {
		t.Fatalf("unexpected top level values: %+v", config)
	}
	if config.Profile.ResumeFile != "resume.txt" {
		t.Fatalf("unexpected profile config: %+v", config.Profile)
	}
	if config.Apply.Interval != 3*time.Second || config.Apply.Selection != "top5" {
		t.Fatalf("unexpected apply config: %+v", config.Apply)
	}
	if got := excludedEmployers(config); len(got) != 1 || got[0] != "42" {
		t.Fatalf("unexpected excluded employers: %v", got)
	}
	if config.Redis.ProfileTTL != 12*time.Hour {
		t.Fatalf("unexpected redis ttl: %s", config.Redis.ProfileTTL)
	}
	if config.Scoring.Concurrency != 8 {
		t.Fatalf("unexpected concurrency: %d", config.Scoring.Concurrency)
	}
	if applyInterval(config) != 3*time.Second {
		t.Fatalf("configured interval must be used")
	}
}

func TestGetConfigDefaults(t *testing.T) {
	config := readTestConfig(t, "user-agent: x\n")

	if config.Apply == nil || config.Profile == nil {
		t.Fatalf("apply and profile sections must be initialized")
	}
	if applyInterval(config) != apply.DefaultInterval {
		t.Fatalf("expected default apply interval")
	}
	if items := promptItems(config); len(items) != 6 {
		t.Fatalf("exclude file prompt must be hidden without exclude file: %v", items)
	}

	cfg := scheduleConfig(config, zap.NewNop())
	if cfg.UserPause != scheduler.DefaultUserPause || cfg.Spec != "" {
		t.Fatalf("unexpected schedule defaults: %+v", cfg)
	}
}

func TestScheduleConfig(t *testing.T) {
	config := readTestConfig(t, testConfig)

	cfg := scheduleConfig(config, zap.NewNop())
	if cfg.Spec != "30 8 * * 1-5" || cfg.DigestSize != 7 || cfg.UserPause != 500*time.Millisecond {
		t.Fatalf("unexpected schedule config: %+v", cfg)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Location)
	}
}

func TestLoadProfileFromResumeFile(t *testing.T) {
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(resumePath, []byte("Python developer, Django, PostgreSQL, Docker"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	config := &Config{Profile: &ProfileConfig{ResumeFile: resumePath}, Apply: &ApplyConfig{}}
	analyzer := newAnalyzer(config, nil, nil, zap.NewNop())

	p, text, err := loadProfile(context.Background(), config, nil, nil, analyzer)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if text == "" {
		t.Fatalf("resume text must be returned")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("keyword profile must be valid: %v", err)
	}
	if len(p.TopSkills) == 0 || p.TopSkills[0] != "Python" {
		t.Fatalf("unexpected skills: %v", p.TopSkills)
	}
}

func TestLoadProfileRequiresSource(t *testing.T) {
	config := &Config{Profile: &ProfileConfig{}, Apply: &ApplyConfig{}}

	_, _, err := loadProfile(context.Background(), config, nil, nil, newAnalyzer(config, nil, nil, nil))
	if err == nil {
		t.Fatalf("expected error without profile source")
	}
}

func TestLoadProfileFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := "exact_position: Go Developer\ntop_skills: [go, postgres]\nexperience_years: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	config := &Config{Profile: &ProfileConfig{File: path}, Apply: &ApplyConfig{}}
	p, text, err := loadProfile(context.Background(), config, nil, nil, nil)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if text != "" || p.ExactPosition != "Go Developer" || p.ExperienceLevel != profile.Middle {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestMetricsRouter(t *testing.T) {
	healthy := metricsRouter(func(context.Context) error { return nil })
	broken := metricsRouter(func(context.Context) error { return errors.New("db down") })

	cases := []struct {
		handler http.Handler
		path    string
		status  int
	}{
		{healthy, "/healthz", http.StatusOK},
		{healthy, "/readyz", http.StatusOK},
		{broken, "/readyz", http.StatusServiceUnavailable},
		{healthy, "/metrics", http.StatusOK},
		{healthy, "/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.status, rec.Code)
		}
	}
}
