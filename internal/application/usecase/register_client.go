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
)

// RegisterClientUseCase adds a new client to the book.
type RegisterClientUseCase struct {
	book      *state.Book
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewRegisterClientUseCase wires dependencies.
func NewRegisterClientUseCase(book *state.Book, publisher port.EventPublisher, logger *slog.Logger) *RegisterClientUseCase {
	return &RegisterClientUseCase{book: book, publisher: publisher, logger: logger}
}

// Execute validates and persists the new client.
func (uc *RegisterClientUseCase) Execute(ctx context.Context, req dto.RegisterClientRequest) (dto.ClientResponse, error) {
	client, err := model.NewClient(req.Name, req.Phone, req.Address)
	if err != nil {
		return dto.ClientResponse{}, err
	}

	if err := uc.book.Update(ctx, func(data *model.Dataset) error {
		data.Clients = append(data.Clients, client)
		return nil
	}); err != nil {
		return dto.ClientResponse{}, fmt.Errorf("register client: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, event.NewClientRegistered(client.ID, client.Name))

	return dto.NewClientResponse(client), nil
}
