// Package engine wires the extraction pipeline together: rule lookup,
// field extraction, bank identification, classification, account
// resolution and formatting.
package engine

import (
	"context"
	"runtime"

	"github.com/Veraticus/spice-sms/internal/account"
	"github.com/Veraticus/spice-sms/internal/bank"
	"github.com/Veraticus/spice-sms/internal/classifier"
	"github.com/Veraticus/spice-sms/internal/extract"
	"github.com/Veraticus/spice-sms/internal/format"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/pending"
	"github.com/Veraticus/spice-sms/internal/rules"
	"github.com/Veraticus/spice-sms/internal/service"
)

// Config holds configuration options for the detector.
type Config struct {
	DefaultAccountID    string
	Accounts            []model.Account
	ReclassifyThreshold int
	Workers             int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ReclassifyThreshold: format.DefaultReclassifyThreshold,
		Workers:             runtime.GOMAXPROCS(0),
	}
}

// Detector is the transaction detector. Its services are exported so
// callers can manage rules, learning and mappings through the same
// instances the pipeline reads.
type Detector struct {
	Rules      *rules.Store
	Banks      *bank.Identifier
	Classifier *classifier.Classifier
	Mappings   *account.Mappings
	// Pending is nil when the detector has no storage.
	Pending *pending.Queue

	extractor *extract.Engine
	resolver  *account.Resolver
	formatter *format.Formatter
	config    Config
}

// New creates a detector over storage. A nil storage keeps all state in
// memory and disables the pending queue.
func New(storage service.Storage, config Config, opts ...extract.Option) *Detector {
	if config.ReclassifyThreshold <= 0 {
		config.ReclassifyThreshold = format.DefaultReclassifyThreshold
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	var (
		ruleStore   service.RuleStorage
		modelStore  service.ClassifierStorage
		bankStore   service.BankMappingStorage
		pendingRepo service.PendingStorage
	)
	if storage != nil {
		ruleStore, modelStore, bankStore, pendingRepo = storage, storage, storage, storage
	}

	d := &Detector{
		Rules:      rules.NewStore(ruleStore),
		Classifier: classifier.New(modelStore),
		Mappings:   account.NewMappings(bankStore),
		config:     config,
	}
	d.Banks = bank.NewIdentifier(d.Rules)
	d.extractor = extract.New(d.Rules, append([]extract.Option{extract.WithBankIdentifier(d.Banks)}, opts...)...)
	d.resolver = account.NewResolver(d.Mappings)
	d.formatter = format.New(d.Classifier, format.WithThreshold(config.ReclassifyThreshold))
	if pendingRepo != nil {
		d.Pending = pending.NewQueue(pendingRepo, d.Classifier)
	}

	return d
}

// Load reads rules, the classifier model and bank mappings from storage.
// Unreadable state is replaced by empty defaults.
func (d *Detector) Load(ctx context.Context) {
	d.Rules.Load(ctx)
	d.Classifier.Load(ctx)
	d.Mappings.Load(ctx)
}

// ParseMessage extracts a transaction from text, or returns nil.
func (d *Detector) ParseMessage(text string) *model.ExtractionResult {
	return d.extractor.ParseMessage(text)
}

// Format resolves the account for r among accounts and builds the
// transaction. It returns nil when r has no amount.
func (d *Detector) Format(r *model.ExtractionResult, accounts []model.Account) *model.FormattedTransaction {
	if !r.HasAmount() {
		return nil
	}
	accountID := d.resolver.Resolve(r, accounts, d.config.DefaultAccountID)
	return d.formatter.Format(r, accountID)
}

// Accounts returns the configured account list.
func (d *Detector) Accounts() []model.Account {
	return d.config.Accounts
}
