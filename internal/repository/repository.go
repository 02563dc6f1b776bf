// Package repository implements Postgres persistence with pgx.
package repository

import (
	_ "embed"
	"errors"
)

// Schema creates every table the service uses. It is idempotent.
//
//go:embed schema.sql
var Schema string

var (
	ErrNotFound      = errors.New("not found")
	ErrLogNotPending = errors.New("medication log is no longer pending")
)
