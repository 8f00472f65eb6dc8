// Package ledger provides access to the durable coin, debit and award
// records kept in the relational store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Set of error variables for expected ledger failures.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Config represents the mandatory settings needed to open the ledger.
type Config struct {
	Log *zap.SugaredLogger

	// DataDir is the directory holding the sqlite file. An in-memory
	// database is used when empty, which is useful for testing.
	DataDir string
}

// Ledger manages the set of APIs for coin, debit and award access.
type Ledger struct {
	log *zap.SugaredLogger
	db  *gorm.DB
}

// Open creates the sqlite database if needed and migrates the table schemas.
func Open(cfg Config) (*Ledger, error) {
	dsn := "file::memory:?cache=shared"

	if cfg.DataDir != "" {
		if _, err := os.Stat(cfg.DataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading data dir: %w", err)
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data dir: %w", err)
			}
		}

		// WAL journal mode so readers don't block the single writer.
		path := filepath.Join(cfg.DataDir, "ledger.sqlite")
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	for _, model := range []any{&Coin{}, &Debit{}, &PosseAward{}} {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("migrating table schema: %w", err)
		}
	}

	return &Ledger{
		log: cfg.Log,
		db:  db,
	}, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateCoin appends a new coin record. The unique indexes on digest and
// message are the final authority on coin uniqueness.
func (l *Ledger) CreateCoin(ctx context.Context, coin Coin) error {
	result := l.db.WithContext(ctx).Create(&coin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return result.Error
	}

	return nil
}

// QueryCoinByMessage retrieves the coin mined from the given message.
func (l *Ledger) QueryCoinByMessage(ctx context.Context, message string) (Coin, error) {
	var coin Coin
	result := l.db.WithContext(ctx).Where("message = ?", message).First(&coin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coin{}, ErrNotFound
		}
		return Coin{}, result.Error
	}

	return coin, nil
}

// QueryCoins retrieves every coin ever mined, newest first.
func (l *Ledger) QueryCoins(ctx context.Context) ([]Coin, error) {
	var coins []Coin
	result := l.db.WithContext(ctx).Order("created_at desc").Find(&coins)
	if result.Error != nil {
		return nil, result.Error
	}

	return coins, nil
}

// IsDebited reports whether the specified coin has already been spent in
// a settlement.
func (l *Ledger) IsDebited(ctx context.Context, digest string) (bool, error) {
	var count int64
	result := l.db.WithContext(ctx).Model(&Debit{}).Where("digest = ?", digest).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// CreateSettlement appends the award row and one debit row per winning
// bid as a single transaction. Either all rows commit or none do.
func (l *Ledger) CreateSettlement(ctx context.Context, award PosseAward, digests []string) (PosseAward, error) {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&award); result.Error != nil {
			return result.Error
		}

		for _, digest := range digests {
			debit := Debit{
				Digest:       digest,
				PosseAwardID: award.ID,
				CreatedAt:    award.CreatedAt,
			}
			if result := tx.Create(&debit); result.Error != nil {
				return result.Error
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return PosseAward{}, ErrDuplicate
		}
		return PosseAward{}, err
	}

	return award, nil
}

// QueryAwards retrieves the settlement history, newest first.
func (l *Ledger) QueryAwards(ctx context.Context) ([]PosseAward, error) {
	var awards []PosseAward
	result := l.db.WithContext(ctx).Order("created_at desc").Find(&awards)
	if result.Error != nil {
		return nil, result.Error
	}

	return awards, nil
}
