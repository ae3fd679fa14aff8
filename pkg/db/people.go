package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// GetPerson fetches a single person with their interests and recurring busy
// entries. Returns ErrNotFound when no such person exists.
func (db *DB) GetPerson(ctx context.Context, id string) (*Person, error) {
	var person Person
	err := db.pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(personality_code, '')
		FROM people WHERE id = $1
	`, id).Scan(&person.ID, &person.Name, &person.Email, &person.PersonalityCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query person %s: %w", id, err)
	}

	person.Interests, err = db.getInterests(ctx, id)
	if err != nil {
		return nil, err
	}

	person.RecurringBusy, err = db.getRecurringBusy(ctx, id)
	if err != nil {
		return nil, err
	}

	return &person, nil
}

// GetPeople fetches all people with their interests and recurring busy entries
func (db *DB) GetPeople(ctx context.Context) ([]Person, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, name, email, COALESCE(personality_code, '')
		FROM people ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var person Person
		if err := rows.Scan(&person.ID, &person.Name, &person.Email, &person.PersonalityCode); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	for i := range people {
		people[i].Interests, err = db.getInterests(ctx, people[i].ID)
		if err != nil {
			return nil, err
		}
		people[i].RecurringBusy, err = db.getRecurringBusy(ctx, people[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return people, nil
}

// InsertPerson inserts a person record with their interests
func (db *DB) InsertPerson(ctx context.Context, person *Person) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO people (id, name, email, personality_code)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, person.ID, person.Name, person.Email, person.PersonalityCode)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	for _, interest := range person.Interests {
		_, err = tx.Exec(ctx, `
			INSERT INTO person_interests (person_id, interest) VALUES ($1, $2)
		`, person.ID, interest)
		if err != nil {
			return fmt.Errorf("failed to insert interest: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit person insert: %w", err)
	}
	return nil
}

// AddRecurringBusy stores a recurring commitment for a person. The rule
// string is assumed valid; callers validate it before writing.
func (db *DB) AddRecurringBusy(ctx context.Context, entry *RecurringBusyEntry) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO recurring_busy (id, person_id, rrule, start_minutes, end_minutes)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.PersonID, entry.RRule, entry.StartMinutes, entry.EndMinutes)
	if err != nil {
		return fmt.Errorf("failed to insert recurring busy entry: %w", err)
	}
	return nil
}

func (db *DB) getInterests(ctx context.Context, personID string) ([]string, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT interest FROM person_interests WHERE person_id = $1 ORDER BY interest
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interests for %s: %w", personID, err)
	}
	defer rows.Close()

	var interests []string
	for rows.Next() {
		var interest string
		if err := rows.Scan(&interest); err != nil {
			return nil, fmt.Errorf("failed to scan interest: %w", err)
		}
		interests = append(interests, interest)
	}
	return interests, rows.Err()
}

func (db *DB) getRecurringBusy(ctx context.Context, personID string) ([]RecurringBusyEntry, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, person_id, rrule, start_minutes, end_minutes
		FROM recurring_busy WHERE person_id = $1
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring busy for %s: %w", personID, err)
	}
	defer rows.Close()

	var entries []RecurringBusyEntry
	for rows.Next() {
		var entry RecurringBusyEntry
		if err := rows.Scan(&entry.ID, &entry.PersonID, &entry.RRule, &entry.StartMinutes, &entry.EndMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan recurring busy entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
