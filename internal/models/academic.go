package models

import "time"

// AcademicSession is the top level scope (e.g. "2024") every class belongs to.
type AcademicSession struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Class represents an academic class within a session.
type Class struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Batch groups students of a class taught together.
type Batch struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	ClassID   string    `db:"class_id" json:"classId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Section is an optional subdivision of a class.
type Section struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	ClassID   string    `db:"class_id" json:"classId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// UnknownGroup labels rows whose class relation could not be resolved.
const UnknownGroup = "Unknown"

// GroupName resolves an optional relation name to a grouping key.
func GroupName(name *string) string {
	if name == nil || *name == "" {
		return UnknownGroup
	}
	return *name
}
