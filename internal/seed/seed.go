// Package seed loads initial directory data and public holidays from YAML.
//
// Members reference each other by key so that relatives can be wired before
// any database ids exist:
//
//	members:
//	  - key: jose
//	    first_name: Jose
//	    last_name: Cruz
//	    relatives: {spouse: maria}
//	  - key: maria
//	    first_name: Maria
//	    last_name: Cruz
//	holidays:
//	  - date: "2024-06-12"
//	    name: Independence Day
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"churchadmin/internal/models"
)

// File is the YAML seed document.
type File struct {
	Members  []Member  `yaml:"members"`
	Presets  []Preset  `yaml:"presets"`
	Events   []Event   `yaml:"events"`
	Holidays []Holiday `yaml:"holidays"`
}

type Member struct {
	Key           string            `yaml:"key"`
	FirstName     string            `yaml:"first_name"`
	LastName      string            `yaml:"last_name"`
	Nickname      string            `yaml:"nickname"`
	Sex           string            `yaml:"sex"`
	DateOfBirth   string            `yaml:"date_of_birth"`
	CivilStatus   string            `yaml:"civil_status"`
	Address       string            `yaml:"address"`
	ContactNumber string            `yaml:"contact_number"`
	Occupation    string            `yaml:"occupation"`
	Tags          []string          `yaml:"tags"`
	IsMember      bool              `yaml:"is_member"`
	FamilyRole    string            `yaml:"family_role"`
	Relatives     map[string]string `yaml:"relatives"`
}

type Preset struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type Event struct {
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type Holiday struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// Load reads a seed file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document. Unknown fields are rejected so typos
// surface instead of silently dropping data.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	seen := map[string]bool{}
	for _, m := range f.Members {
		if m.Key == "" {
			continue
		}
		if seen[m.Key] {
			return nil, fmt.Errorf("duplicate member key %q", m.Key)
		}
		seen[m.Key] = true
	}
	return &f, nil
}

// HolidayMap returns the holidays keyed by ISO date.
func (f *File) HolidayMap() map[string]string {
	out := make(map[string]string, len(f.Holidays))
	for _, h := range f.Holidays {
		out[h.Date] = h.Name
	}
	return out
}

// MemberStore is the subset of the member service the seeder needs.
type MemberStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, m *models.Member) error
	Update(ctx context.Context, m *models.Member) error
}

// EventStore is the subset of the event service the seeder needs.
type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	CreatePreset(ctx context.Context, p *models.EventPreset) error
}

// Result counts what was created.
type Result struct {
	Members int
	Presets int
	Events  int
}

// Apply creates the seed's members, presets and events. Members are skipped
// when the directory is not empty so seeding twice does not duplicate people.
// Relatives pointing at unknown keys are dropped.
func Apply(ctx context.Context, f *File, members MemberStore, events EventStore, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result

	n, err := members.Count(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 && len(f.Members) > 0 {
		logger.Info("directory not empty, skipping seed members", "existing", n)
	} else if err := applyMembers(ctx, f.Members, members, logger, &res); err != nil {
		return res, err
	}

	for _, p := range f.Presets {
		preset := &models.EventPreset{Name: p.Name, Title: p.Title, Type: p.Type, Time: p.Time,
			Location: p.Location, Description: p.Description, Icon: p.Icon}
		if err := events.CreatePreset(ctx, preset); err != nil {
			return res, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		res.Presets++
	}
	for _, e := range f.Events {
		ev := &models.Event{Title: e.Title, Type: e.Type, Date: e.Date, Time: e.Time,
			Location: e.Location, Description: e.Description, Icon: e.Icon}
		if err := events.Create(ctx, ev); err != nil {
			return res, fmt.Errorf("event %q on %s: %w", e.Title, e.Date, err)
		}
		res.Events++
	}
	return res, nil
}

func applyMembers(ctx context.Context, seeds []Member, store MemberStore, logger *slog.Logger, res *Result) error {
	created := make([]*models.Member, len(seeds))
	ids := map[string]int64{}
	for i, s := range seeds {
		m := &models.Member{
			FirstName: s.FirstName, LastName: s.LastName, Nickname: s.Nickname, Sex: s.Sex,
			DateOfBirth: s.DateOfBirth, CivilStatus: s.CivilStatus, Address: s.Address,
			ContactNumber: s.ContactNumber, Occupation: s.Occupation, Tags: s.Tags,
			IsMember: s.IsMember, FamilyRole: s.FamilyRole,
		}
		if err := store.Create(ctx, m); err != nil {
			return fmt.Errorf("member %s %s: %w", s.FirstName, s.LastName, err)
		}
		created[i] = m
		if s.Key != "" {
			ids[s.Key] = m.ID
		}
		res.Members++
	}

	for i, s := range seeds {
		if len(s.Relatives) == 0 {
			continue
		}
		m := created[i]
		m.Relatives = map[string]int64{}
		labels := make([]string, 0, len(s.Relatives))
		for label := range s.Relatives {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			id, ok := ids[s.Relatives[label]]
			if !ok {
				logger.Warn("seed relative not found", "member", m.FullName(), "relation", label, "key", s.Relatives[label])
				continue
			}
			m.Relatives[label] = id
		}
		if err := store.Update(ctx, m); err != nil {
			return fmt.Errorf("member %s relatives: %w", m.FullName(), err)
		}
	}
	return nil
}
