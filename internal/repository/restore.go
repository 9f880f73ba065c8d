package repository

import (
	"context"
	"fmt"
	"strings"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// Restore methods insert rows with their original ids so that references
// between records (relatives, attendees, member links) survive a backup
// round trip. They are meant to run inside one transaction.

var (
	memberInsertColumns = []string{"first_name", "last_name", "nickname", "sex", "date_of_birth", "age", "civil_status",
		"address", "contact_number", "occupation", "relatives", "tags", "is_member", "family_role", "image"}
	eventInsertColumns = []string{"title", "type", "date", "time", "location", "description", "attendees", "icon",
		"override_of", "is_override", "is_cancelled", "member_id"}
	presetInsertColumns     = []string{"name", "title", "type", "time", "location", "description", "icon"}
	minuteInsertColumns     = []string{"title", "date", "start_time", "end_time", "location", "attendees", "content", "structure", "created_by"}
	attendanceInsertColumns = []string{"event_id", "event_type", "event_title", "date", "time", "location", "attendees", "total_attendees", "notes"}
	prayerInsertColumns     = []string{"title", "member_id", "member_name", "description", "status", "priority", "date", "notes", "created_by"}
	userInsertColumns       = []string{"email", "password_hash", "name", "oauth_provider", "oauth_subject", "is_admin"}
)

func restoreRow(ctx context.Context, db database.DBTX, table string, columns []string, id int64, args []any) error {
	cols := append([]string{"id"}, columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
	if _, err := db.ExecContext(ctx, query, append([]any{id}, args...)...); err != nil {
		return fmt.Errorf("failed to restore %s %d: %w", table, id, err)
	}
	return nil
}

// RestorableTables lists the tables a backup covers, children last.
var RestorableTables = []string{"users", "members", "events", "event_presets", "minutes", "attendance", "prayer_concerns"}

// ClearTables deletes every row of the backed-up tables, sessions included.
func ClearTables(ctx context.Context, db database.DBTX) error {
	tables := []string{"sessions"}
	for i := len(RestorableTables) - 1; i >= 0; i-- {
		tables = append(tables, RestorableTables[i])
	}
	for i := range tables {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+tables[i]); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tables[i], err)
		}
	}
	return nil
}

// ResetSequences realigns id sequences after a restore.
func ResetSequences(ctx context.Context, db database.DBTX) error {
	for _, table := range RestorableTables {
		query := db.GetDialect().ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

// Restore inserts m with its id.
func (r *MemberRepository) Restore(ctx context.Context, m *models.Member) error {
	args, err := memberArgs(m)
	if err != nil {
		return err
	}
	return restoreRow(ctx, r.db, "members", memberInsertColumns, m.ID, args)
}

// Restore inserts e with its id.
func (r *EventRepository) Restore(ctx context.Context, e *models.Event) error {
	return restoreRow(ctx, r.db, "events", eventInsertColumns, e.ID, eventArgs(e))
}

// Restore inserts p with its id.
func (r *PresetRepository) Restore(ctx context.Context, p *models.EventPreset) error {
	args := []any{p.Name, p.Title, p.Type, p.Time, p.Location, p.Description, p.Icon}
	return restoreRow(ctx, r.db, "event_presets", presetInsertColumns, p.ID, args)
}

// Restore inserts m with its id.
func (r *MinutesRepository) Restore(ctx context.Context, m *models.Minute) error {
	args, err := minuteArgs(m)
	if err != nil {
		return err
	}
	return restoreRow(ctx, r.db, "minutes", minuteInsertColumns, m.ID, args)
}

// Restore inserts a with its id.
func (r *AttendanceRepository) Restore(ctx context.Context, a *models.Attendance) error {
	args, err := attendanceArgs(a)
	if err != nil {
		return err
	}
	return restoreRow(ctx, r.db, "attendance", attendanceInsertColumns, a.ID, args)
}

// Restore inserts c with its id.
func (r *PrayerRepository) Restore(ctx context.Context, c *models.PrayerConcern) error {
	return restoreRow(ctx, r.db, "prayer_concerns", prayerInsertColumns, c.ID, prayerArgs(c))
}

// Restore inserts u with its id and password hash.
func (r *UserRepository) Restore(ctx context.Context, u *models.User) error {
	args := []any{u.Email, u.PasswordHash, u.Name, nullString(u.OAuthProvider), nullString(u.OAuthSubject), u.IsAdmin}
	return restoreRow(ctx, r.db, "users", userInsertColumns, u.ID, args)
}
