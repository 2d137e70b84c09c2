// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/spice-sms/internal/model"
)

// RuleStorage persists the custom-rules document.
type RuleStorage interface {
	// GetRules returns all rules oldest first.
	GetRules(ctx context.Context) ([]model.CustomRule, error)
	SaveRule(ctx context.Context, rule *model.CustomRule) error
	// DeleteRule removes a rule; deleting an absent id is not an error.
	DeleteRule(ctx context.Context, id string) error
}

// ClassifierStorage persists the learned classifier model.
type ClassifierStorage interface {
	GetClassifierModel(ctx context.Context) (model.ClassifierModel, error)
	// SaveMapping writes description -> category and bumps the category frequency.
	SaveMapping(ctx context.Context, description, category string) error
}

// BankMappingStorage persists the bank -> account mapping table.
type BankMappingStorage interface {
	GetBankMappings(ctx context.Context) (map[string]string, error)
	SaveBankMapping(ctx context.Context, bankKey, accountID string) error
	DeleteBankMapping(ctx context.Context, bankKey string) error
}

// PendingStorage persists candidates awaiting confirmation.
type PendingStorage interface {
	// AddPending stores p unless a pending item with the same amount and date
	// exists; it reports whether p was stored.
	AddPending(ctx context.Context, p *model.PendingTransaction) (bool, error)
	GetPending(ctx context.Context) ([]model.PendingTransaction, error)
	GetPendingByID(ctx context.Context, id string) (*model.PendingTransaction, error)
	DeletePending(ctx context.Context, id string) error
}

// Storage is the full persistence contract.
type Storage interface {
	RuleStorage
	ClassifierStorage
	BankMappingStorage
	PendingStorage

	Migrate(ctx context.Context) error
	Close() error
}
