package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
	"churchadmin/internal/repository"
)

// BackupVersion is written into every export.
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version        string                 `json:"version"`
	ExportedAt     time.Time              `json:"exported_at"`
	DatabaseType   string                 `json:"database_type"`
	Users          []UserBackup           `json:"users"`
	Members        []models.Member        `json:"members"`
	Events         []models.Event         `json:"events"`
	Presets        []models.EventPreset   `json:"presets"`
	Minutes        []models.Minute        `json:"minutes"`
	Attendance     []models.Attendance    `json:"attendance"`
	PrayerConcerns []models.PrayerConcern `json:"prayer_concerns"`
}

// UserBackup represents a user record for backup. Unlike models.User it
// carries the password hash and OAuth subject.
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Counts summarises a backup.
func (b *BackupData) Counts() map[string]int {
	return map[string]int{
		"users":           len(b.Users),
		"members":         len(b.Members),
		"events":          len(b.Events),
		"presets":         len(b.Presets),
		"minutes":         len(b.Minutes),
		"attendance":      len(b.Attendance),
		"prayer_concerns": len(b.PrayerConcerns),
	}
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db      *database.DB
	refresh Refresher
	logger  *slog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, refresh Refresher, logger *slog.Logger) *BackupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupService{db: db, refresh: refresherOrNoop(refresh), logger: logger}
}

// Snapshot reads every backed-up table.
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: "universal",
	}

	users, err := repository.NewUserRepository(s.db).GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, Name: u.Name,
			OAuthProvider: u.OAuthProvider, OAuthSubject: u.OAuthSubject, IsAdmin: u.IsAdmin,
			CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		})
	}

	if backup.Members, err = repository.NewMemberRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export members: %w", err)
	}
	if backup.Events, err = repository.NewEventRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export events: %w", err)
	}
	if backup.Presets, err = repository.NewPresetRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export presets: %w", err)
	}
	if backup.Minutes, err = repository.NewMinutesRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export minutes: %w", err)
	}
	if backup.Attendance, err = repository.NewAttendanceRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export attendance: %w", err)
	}
	if backup.PrayerConcerns, err = repository.NewPrayerRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export prayer concerns: %w", err)
	}
	return backup, nil
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	s.logger.Info("database exported", "path", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	s.logger.Info("backup written", "counts", backup.Counts())
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) (*BackupData, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file, replace)
}

// ImportFromReader restores a backup in a single transaction. With replace
// set, existing rows are deleted first; otherwise conflicting ids fail the
// whole import.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader, replace bool) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	s.logger.Info("importing backup", "version", backup.Version, "exported_at", backup.ExportedAt, "replace", replace)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if replace {
			if err := repository.ClearTables(ctx, tx); err != nil {
				return err
			}
		}
		if err := restoreAll(ctx, tx, &backup); err != nil {
			return err
		}
		return repository.ResetSequences(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.refresh.Refresh(FeedMembers, FeedEvents, FeedPresets, FeedCalendar, FeedFamilies, FeedMinutes, FeedAttendance, FeedPrayer)
	s.logger.Info("database import completed", "counts", backup.Counts())
	return &backup, nil
}

func restoreAll(ctx context.Context, tx *database.Tx, b *BackupData) error {
	users := repository.NewUserRepository(tx)
	for _, u := range b.Users {
		user := models.User{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, Name: u.Name,
			OAuthProvider: u.OAuthProvider, OAuthSubject: u.OAuthSubject, IsAdmin: u.IsAdmin}
		if err := users.Restore(ctx, &user); err != nil {
			return err
		}
	}
	members := repository.NewMemberRepository(tx)
	for i := range b.Members {
		if err := members.Restore(ctx, &b.Members[i]); err != nil {
			return err
		}
	}
	events := repository.NewEventRepository(tx)
	for i := range b.Events {
		if err := events.Restore(ctx, &b.Events[i]); err != nil {
			return err
		}
	}
	presets := repository.NewPresetRepository(tx)
	for i := range b.Presets {
		if err := presets.Restore(ctx, &b.Presets[i]); err != nil {
			return err
		}
	}
	minutes := repository.NewMinutesRepository(tx)
	for i := range b.Minutes {
		if err := minutes.Restore(ctx, &b.Minutes[i]); err != nil {
			return err
		}
	}
	attendance := repository.NewAttendanceRepository(tx)
	for i := range b.Attendance {
		if err := attendance.Restore(ctx, &b.Attendance[i]); err != nil {
			return err
		}
	}
	prayers := repository.NewPrayerRepository(tx)
	for i := range b.PrayerConcerns {
		if err := prayers.Restore(ctx, &b.PrayerConcerns[i]); err != nil {
			return err
		}
	}
	return nil
}
