package db

import "context"

// PersonStore defines the interface for person database operations
type PersonStore interface {
	GetPerson(ctx context.Context, id string) (*Person, error)
	GetPeople(ctx context.Context) ([]Person, error)
	InsertPerson(ctx context.Context, person *Person) error
	AddRecurringBusy(ctx context.Context, entry *RecurringBusyEntry) error
}

// TokenStore defines the interface for calendar token database operations
type TokenStore interface {
	GetToken(ctx context.Context, personID string) (*CalendarToken, error)
	UpsertToken(ctx context.Context, token *CalendarToken) error
	DeleteToken(ctx context.Context, personID string) error
}
