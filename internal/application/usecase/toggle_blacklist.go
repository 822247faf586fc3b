package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bobbykesh/lms/internal/application/dto"
	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/port"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// ToggleBlacklistUseCase flips a client's blacklist flag. A blacklisted
// client's credit limit evaluates to zero, which blocks any further issuance.
type ToggleBlacklistUseCase struct {
	book      *state.Book
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewToggleBlacklistUseCase wires dependencies.
func NewToggleBlacklistUseCase(book *state.Book, publisher port.EventPublisher, logger *slog.Logger) *ToggleBlacklistUseCase {
	return &ToggleBlacklistUseCase{book: book, publisher: publisher, logger: logger}
}

// Execute toggles the flag and returns the updated client.
func (uc *ToggleBlacklistUseCase) Execute(ctx context.Context, clientID string) (dto.ClientResponse, error) {
	var updated model.Client

	if err := uc.book.Update(ctx, func(data *model.Dataset) error {
		for i := range data.Clients {
			if data.Clients[i].ID == clientID {
				data.Clients[i].Blacklisted = !data.Clients[i].Blacklisted
				updated = data.Clients[i]
				return nil
			}
		}
		return fmt.Errorf("%w: client %s", valueobject.ErrNotFound, clientID)
	}); err != nil {
		return dto.ClientResponse{}, err
	}

	publish(ctx, uc.logger, uc.publisher, event.NewClientBlacklistToggled(updated.ID, updated.Blacklisted))

	return dto.NewClientResponse(updated), nil
}
