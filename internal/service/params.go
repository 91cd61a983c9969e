package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/ssl2010/englishlearn-api/internal/domain/mastery"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// LoadMasteryParams reads the tunable mastery parameters from the settings
// store. Unset or malformed keys fall back to the defaults, so a fresh
// deployment works before anyone touches the settings endpoint. Callers load
// once per request and pass the result down explicitly; nothing reads the
// settings store mid-computation.
func LoadMasteryParams(ctx context.Context, settings store.SettingsStore, log *slog.Logger) mastery.Params {
	log = logger.FromContextOrDefault(ctx, log)

	params := *mastery.NewDefaultParams()
	params.MasteryThreshold = intSetting(ctx, settings, store.SettingMasteryThreshold, params.MasteryThreshold, log)
	params.WeeklyTargetDays = intSetting(ctx, settings, store.SettingWeeklyTargetDays, params.WeeklyTargetDays, log)
	return params
}

func intSetting(ctx context.Context, settings store.SettingsStore, key string, def int, log *slog.Logger) int {
	raw, err := settings.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrSettingNotFound) {
			log.Error("failed to read setting, using default",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("setting holds non-numeric value, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return def
	}
	return n
}
