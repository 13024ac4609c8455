package service

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork runs a group of writes as one atomic commit. fn receives the
// transaction handle; returning an error or panicking rolls everything back
// (a panic is re-raised after the rollback).
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormUnitOfWork struct{ db *gorm.DB }

func NewUnitOfWork(db *gorm.DB) UnitOfWork { return &gormUnitOfWork{db: db} }

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return persistencia(u.db.WithContext(ctx).Transaction(fn))
}
