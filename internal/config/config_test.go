package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DATABASE_URL", "REDIS_URL", "TICK_INTERVAL_MS", "PITCH_SCREEN_WIDTH_PX", "MIGRATE_ON_START"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Errorf("storage should be disabled by default, got db=%q redis=%q", cfg.DatabaseURL, cfg.RedisURL)
	}
	if cfg.TickIntervalMs != 16 || cfg.GoalPauseMs != 3000 {
		t.Errorf("timing defaults %d/%d", cfg.TickIntervalMs, cfg.GoalPauseMs)
	}
	if cfg.ScreenWidth != 1080 || cfg.ScreenHeight != 1920 {
		t.Errorf("screen %vx%v", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if !cfg.MigrateOnStart {
		t.Error("MigrateOnStart should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TICK_INTERVAL_MS", "8")
	t.Setenv("PITCH_VERTICAL_PADDING_PX", "62.5")
	t.Setenv("MIGRATE_ON_START", "false")
	cfg := Load()

	if cfg.Port != "9090" || cfg.TickIntervalMs != 8 {
		t.Errorf("overrides not applied: port=%q tick=%d", cfg.Port, cfg.TickIntervalMs)
	}
	if cfg.PitchVerticalPadding != 62.5 {
		t.Errorf("vertical padding %v, want 62.5", cfg.PitchVerticalPadding)
	}
	if cfg.MigrateOnStart {
		t.Error("MIGRATE_ON_START=false ignored")
	}
	if !cfg.IsProduction() {
		t.Error("APP_ENV=Production should count as production")
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("GOAL_PAUSE_MS", "soon")
	t.Setenv("PITCH_SCREEN_HEIGHT_PX", "tall")
	t.Setenv("MIGRATE_ON_START", "maybe")
	cfg := Load()

	if cfg.GoalPauseMs != 3000 || cfg.ScreenHeight != 1920 || !cfg.MigrateOnStart {
		t.Errorf("malformed values should use defaults: %+v", cfg)
	}
}
