package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// MemberRepository stores the member directory.
type MemberRepository struct {
	db database.DBTX
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db database.DBTX) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, first_name, last_name, nickname, sex, date_of_birth, age, civil_status,
	address, contact_number, occupation, relatives, tags, is_member, family_role, image, created_at, updated_at`

func scanMember(s rowScanner) (*models.Member, error) {
	var m models.Member
	var age sql.NullInt64
	var relatives, tags string
	if err := s.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Nickname, &m.Sex, &m.DateOfBirth, &age,
		&m.CivilStatus, &m.Address, &m.ContactNumber, &m.Occupation, &relatives, &tags,
		&m.IsMember, &m.FamilyRole, &m.Image, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Age = intPtr(age)
	m.Relatives = map[string]int64{}
	m.Tags = []string{}
	decodeJSON("members", "relatives", m.ID, relatives, &m.Relatives)
	decodeJSON("members", "tags", m.ID, tags, &m.Tags)
	return &m, nil
}

func memberArgs(m *models.Member) ([]any, error) {
	relatives := m.Relatives
	if relatives == nil {
		relatives = map[string]int64{}
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	relJSON, err := encodeJSON(relatives)
	if err != nil {
		return nil, err
	}
	tagJSON, err := encodeJSON(tags)
	if err != nil {
		return nil, err
	}
	return []any{m.FirstName, m.LastName, m.Nickname, m.Sex, m.DateOfBirth, nullIntPtr(m.Age), m.CivilStatus,
		m.Address, m.ContactNumber, m.Occupation, relJSON, tagJSON, m.IsMember, m.FamilyRole, m.Image}, nil
}

// Create inserts a member and sets its ID.
func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	args, err := memberArgs(m)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO members (first_name, last_name, nickname, sex, date_of_birth, age, civil_status,
			address, contact_number, occupation, relatives, tags, is_member, family_role, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	m.ID = id
	return nil
}

// Update replaces every field of an existing member.
func (r *MemberRepository) Update(ctx context.Context, m *models.Member) error {
	args, err := memberArgs(m)
	if err != nil {
		return err
	}
	query := `
		UPDATE members
		SET first_name = ?, last_name = ?, nickname = ?, sex = ?, date_of_birth = ?, age = ?, civil_status = ?,
			address = ?, contact_number = ?, occupation = ?, relatives = ?, tags = ?, is_member = ?,
			family_role = ?, image = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, append(args, m.ID)...); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

// Get returns the member with id, or nil when it does not exist.
func (r *MemberRepository) Get(ctx context.Context, id int64) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// List returns every member ordered by id.
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	return members, nil
}

// Delete removes a member. Relatives pointing at it are left dangling and
// ignored by the family view.
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

// Count returns the number of members.
func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}
