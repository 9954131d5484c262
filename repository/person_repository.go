// repository/person_repository.go
package repository

import (
	"database/sql"
	"fmt"

	"github.com/sahelpay/tontine-backend/models"
)

// PersonRepository handles database operations for persons
type PersonRepository struct {
	db *sql.DB
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// CreatePerson saves a person to the database
func (r *PersonRepository) CreatePerson(person *models.Person) error {
	_, err := r.db.Exec(
		"INSERT INTO persons (id, name, phone, pin_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		person.ID, person.Name, person.Phone, person.PinHash, person.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %v", err)
	}
	return nil
}

// GetPersonByID retrieves a person by id; returns nil when absent
func (r *PersonRepository) GetPersonByID(id string) (*models.Person, error) {
	return r.scanPerson(r.db.QueryRow(
		"SELECT id, name, phone, pin_hash, created_at FROM persons WHERE id = $1", id,
	))
}

// GetPersonByPhone retrieves a person by phone number; returns nil when absent
func (r *PersonRepository) GetPersonByPhone(phone string) (*models.Person, error) {
	return r.scanPerson(r.db.QueryRow(
		"SELECT id, name, phone, pin_hash, created_at FROM persons WHERE phone = $1", phone,
	))
}

func (r *PersonRepository) scanPerson(row *sql.Row) (*models.Person, error) {
	var person models.Person
	err := row.Scan(&person.ID, &person.Name, &person.Phone, &person.PinHash, &person.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan person: %v", err)
	}
	return &person, nil
}
