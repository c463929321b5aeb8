package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"APP_PORT", "INJECT_PATHS", "WATCH_DEBOUNCE_MS", "REDIS_ENABLED", "REDIS_CHANNEL"} {
		unsetEnv(t, key)
	}

	cfg := LoadConfig()
	if cfg.AppPort != "8000" {
		t.Fatalf("AppPort = %q, want 8000", cfg.AppPort)
	}
	if !reflect.DeepEqual(cfg.InjectPaths, []string{"/docs"}) {
		t.Fatalf("InjectPaths = %v, want [/docs]", cfg.InjectPaths)
	}
	if cfg.WatchDebounce != 100*time.Millisecond {
		t.Fatalf("WatchDebounce = %s, want 100ms", cfg.WatchDebounce)
	}
	if cfg.RedisEnabled {
		t.Fatal("RedisEnabled should default to false")
	}
	if cfg.RedisChannel != "devreload:reload" {
		t.Fatalf("RedisChannel = %q", cfg.RedisChannel)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9001")
	t.Setenv("INJECT_PATHS", " /docs, /redoc ,,")
	t.Setenv("WATCH_DEBOUNCE_MS", "250")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()
	if cfg.AppPort != "9001" {
		t.Fatalf("AppPort = %q, want 9001", cfg.AppPort)
	}
	if !reflect.DeepEqual(cfg.InjectPaths, []string{"/docs", "/redoc"}) {
		t.Fatalf("InjectPaths = %v", cfg.InjectPaths)
	}
	if cfg.WatchDebounce != 250*time.Millisecond {
		t.Fatalf("WatchDebounce = %s", cfg.WatchDebounce)
	}
	if !cfg.RedisEnabled || cfg.RedisDB != 3 {
		t.Fatalf("redis settings not applied: %+v", cfg)
	}
}

func TestGetEnvAsList_EmptyFallsBack(t *testing.T) {
	t.Setenv("WATCH_PATHS", " , ")
	got := getEnvAsList("WATCH_PATHS", []string{"."})
	if !reflect.DeepEqual(got, []string{"."}) {
		t.Fatalf("got %v, want fallback", got)
	}
}

// unsetEnv removes key for the duration of the test; t.Setenv restores it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
