package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// BackupDocument is the portable backup file format: a single JSON document
// with an ISO-8601 timestamp and the full collections. Expenses are optional
// on import so older backups without them still restore.
type BackupDocument struct {
	Timestamp time.Time       `json:"timestamp"`
	Clients   []model.Client  `json:"clients"`
	Loans     []model.Loan    `json:"loans"`
	Expenses  []model.Expense `json:"expenses,omitempty"`
}

// Filename suggests the conventional download name for the backup.
func (d BackupDocument) Filename() string {
	return fmt.Sprintf("loan_backup_%s.txt", d.Timestamp.Format("2006-01-02"))
}

// BackupUseCase exports and restores whole-book backups, and clears the book.
type BackupUseCase struct {
	book   *state.Book
	logger *slog.Logger
}

// NewBackupUseCase wires dependencies.
func NewBackupUseCase(book *state.Book, logger *slog.Logger) *BackupUseCase {
	return &BackupUseCase{book: book, logger: logger}
}

// Export captures the current book as a backup document.
func (uc *BackupUseCase) Export(_ context.Context) BackupDocument {
	data := uc.book.Current()
	return BackupDocument{
		Timestamp: time.Now().UTC(),
		Clients:   data.Clients,
		Loans:     data.Loans,
		Expenses:  data.Expenses,
	}
}

// Import validates raw backup bytes and, given explicit confirmation,
// replaces the live book with the backup's contents. Without confirmation
// nothing is touched — overwriting live data always requires an explicit
// opt-in, mirroring the export/restore prompt flow.
func (uc *BackupUseCase) Import(ctx context.Context, raw []byte, confirm bool) error {
	// Key presence is checked before decoding into the document so a file of
	// the wrong shape is rejected as a format error, not a partial import.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%w: %w", valueobject.ErrBadBackup, err)
	}
	if _, ok := probe["clients"]; !ok {
		return fmt.Errorf("%w: missing clients", valueobject.ErrBadBackup)
	}
	if _, ok := probe["loans"]; !ok {
		return fmt.Errorf("%w: missing loans", valueobject.ErrBadBackup)
	}

	var doc BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %w", valueobject.ErrBadBackup, err)
	}

	if !confirm {
		return fmt.Errorf("%w: restoring overwrites current data", valueobject.ErrConfirmationRequired)
	}

	if err := uc.book.Replace(ctx, model.Dataset{
		Clients:  doc.Clients,
		Loans:    doc.Loans,
		Expenses: doc.Expenses,
	}); err != nil {
		return err
	}

	uc.logger.Info("backup restored",
		"backup_timestamp", doc.Timestamp,
		"clients", len(doc.Clients),
		"loans", len(doc.Loans),
		"expenses", len(doc.Expenses),
	)
	return nil
}

// Clear wipes the whole book. Requires the same explicit confirmation as a
// restore.
func (uc *BackupUseCase) Clear(ctx context.Context, confirm bool) error {
	if !confirm {
		return fmt.Errorf("%w: clearing wipes all data", valueobject.ErrConfirmationRequired)
	}
	if err := uc.book.Replace(ctx, model.Dataset{}); err != nil {
		return err
	}
	uc.logger.Info("book cleared")
	return nil
}
