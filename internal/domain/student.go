package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyStudentID   = errors.New("student ID cannot be empty")
	ErrEmptyStudentName = errors.New("student name cannot be empty")
)

// Student represents a learner whose worksheets and mastery statistics the
// system tracks. Deleting a student cascades to their sessions, submissions,
// results, and stats at the storage layer.
type Student struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Grade     int       `json:"grade"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudent creates a new Student with the given name and grade.
// It generates a new UUID for the student ID and sets the timestamps.
// Returns an error if validation fails.
func NewStudent(name string, grade int) (*Student, error) {
	student := &Student{
		ID:        uuid.New(),
		Name:      name,
		Grade:     grade,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := student.Validate(); err != nil {
		return nil, err
	}

	return student, nil
}

// Validate checks if the Student has valid data.
// Returns an error if any field fails validation.
func (s *Student) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyStudentID
	}

	if s.Name == "" {
		return ErrEmptyStudentName
	}

	return nil
}
