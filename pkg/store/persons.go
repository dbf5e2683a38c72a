package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/pkg/domain"
	"newsdesk/pkg/ident"
)

// ErrInvalidCredentials marks a failed email/password check.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreatePerson registers a new account. The password is stored as a
// bcrypt hash. A taken email returns ErrDuplicate.
func (s *Store) CreatePerson(ctx context.Context, email, firstName, lastName, password string) (*domain.Person, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &domain.Person{
		Identifier:      ident.New(),
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		PasswordHash:    hash,
		RegisteredSince: time.Now().UTC(),
		Active:          true,
		Settings:        map[string]string{},
		Interests:       map[string]string{},
	}

	_, err = s.sb.Insert("persons").
		Columns("identifier", "email", "first_name", "last_name", "password_hash", "registered_since", "active").
		Values(p.Identifier, p.Email, p.FirstName, p.LastName, p.PasswordHash, p.RegisteredSince, p.Active).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %s", ErrDuplicate, email)
		}
		return nil, fmt.Errorf("insert person: %w", err)
	}
	return p, nil
}

func (s *Store) personBy(ctx context.Context, cond sq.Eq) (*domain.Person, error) {
	var p domain.Person
	var settings, interests []byte
	err := s.sb.Select("identifier", "email", "first_name", "last_name",
		"password_hash", "registered_since", "active", "settings", "interests").
		From("persons").Where(cond).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&p.Identifier, &p.Email, &p.FirstName, &p.LastName,
			&p.PasswordHash, &p.RegisteredSince, &p.Active, &settings, &interests)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load person: %w", err)
	}

	if err := json.Unmarshal(settings, &p.Settings); err != nil {
		p.Settings = map[string]string{}
	}
	if err := json.Unmarshal(interests, &p.Interests); err != nil {
		p.Interests = map[string]string{}
	}
	return &p, nil
}

// PersonByEmail loads an account by its login key.
func (s *Store) PersonByEmail(ctx context.Context, email string) (*domain.Person, error) {
	return s.personBy(ctx, sq.Eq{"email": email})
}

// PersonByID loads an account by identifier.
func (s *Store) PersonByID(ctx context.Context, id int64) (*domain.Person, error) {
	return s.personBy(ctx, sq.Eq{"identifier": id})
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*domain.Person, error) {
	p, err := s.PersonByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// UpdatePersonSettings replaces the free-form settings and interests maps.
func (s *Store) UpdatePersonSettings(ctx context.Context, id int64, settings, interests map[string]string) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	interestsJSON, err := json.Marshal(interests)
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}

	res, err := s.sb.Update("persons").
		Set("settings", settingsJSON).
		Set("interests", interestsJSON).
		Where(sq.Eq{"identifier": id}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update person settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: person %d", ErrNotFound, id)
	}
	return nil
}
