// Package store defines the persistence interfaces the application core
// depends on. Implementations live under internal/platform.
package store
