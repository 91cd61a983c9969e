package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ssl2010/englishlearn-api/internal/store"
)

type stubSettingsStore struct {
	values map[string]string
}

func (s *stubSettingsStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", store.ErrSettingNotFound
	}
	return v, nil
}

func (s *stubSettingsStore) Set(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

func TestLoadMasteryParamsDefaults(t *testing.T) {
	t.Parallel()

	params := LoadMasteryParams(context.Background(), &stubSettingsStore{}, nil)
	assert.Equal(t, 2, params.MasteryThreshold)
	assert.Equal(t, 5, params.WeeklyTargetDays)
}

func TestLoadMasteryParamsStoredValues(t *testing.T) {
	t.Parallel()

	settings := &stubSettingsStore{values: map[string]string{
		store.SettingMasteryThreshold: "4",
		store.SettingWeeklyTargetDays: "3",
	}}
	params := LoadMasteryParams(context.Background(), settings, nil)
	assert.Equal(t, 4, params.MasteryThreshold)
	assert.Equal(t, 3, params.WeeklyTargetDays)
}

func TestLoadMasteryParamsMalformedValue(t *testing.T) {
	t.Parallel()

	settings := &stubSettingsStore{values: map[string]string{
		store.SettingMasteryThreshold: "two",
	}}
	params := LoadMasteryParams(context.Background(), settings, nil)
	assert.Equal(t, 2, params.MasteryThreshold)
}
