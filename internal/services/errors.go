package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDomainNameTaken = errors.New("domain name already exists")
)

// DomainCreationError covers name collisions and persistence failures when
// creating a Domain.
type DomainCreationError struct {
	Name string
	Err  error
}

func (e *DomainCreationError) Error() string {
	return fmt.Sprintf("create domain %q: %v", e.Name, e.Err)
}

func (e *DomainCreationError) Unwrap() error { return e.Err }

// SourceLinkError is a failed domain-source link.
type SourceLinkError struct {
	DomainID uint
	SourceID uint
	Err      error
}

func (e *SourceLinkError) Error() string {
	return fmt.Sprintf("link source %d to domain %d: %v", e.SourceID, e.DomainID, e.Err)
}

func (e *SourceLinkError) Unwrap() error { return e.Err }
