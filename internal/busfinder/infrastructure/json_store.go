package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	"github.com/mateusmacedo/go-busfinder/pkg/application"
)

// JSONFileStore guarda todas as reservas num único arquivo JSON. Cada escrita
// regrava o arquivo inteiro; não há lock, o último a escrever vence.
type JSONFileStore struct {
	path   string
	logger application.AppLogger
}

func NewJSONFileStore(path string, logger application.AppLogger) *JSONFileStore {
	return &JSONFileStore{path: path, logger: logger}
}

func (s *JSONFileStore) Path() string { return s.path }

// Load trata arquivo ausente ou vazio como zero reservas.
func (s *JSONFileStore) Load(ctx context.Context) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Booking{}, nil
	}
	if err != nil {
		application.LogError(ctx, s.logger, "failed to read booking store", err, map[string]interface{}{"path": s.path})
		return nil, fmt.Errorf("read booking store %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Booking{}, nil
	}

	var bookings []domain.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		corrupt := &domain.CorruptStoreError{Path: s.path, Err: err}
		application.LogError(ctx, s.logger, "booking store is corrupt", corrupt, nil)
		return nil, corrupt
	}

	// registros gravados antes do login existir não têm "user"
	for i := range bookings {
		if bookings[i].Owner == "" {
			bookings[i].Owner = domain.GuestOwner
		}
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

func (s *JSONFileStore) Append(ctx context.Context, booking domain.Booking) error {
	bookings, err := s.Load(ctx)
	if err != nil {
		return err
	}

	bookings = append(bookings, booking)
	if err := s.write(ctx, bookings); err != nil {
		return err
	}

	application.LogInfo(ctx, s.logger, "booking saved", map[string]interface{}{
		"booking_id": booking.ID,
		"total":      len(bookings),
	})
	return nil
}

func (s *JSONFileStore) DeleteAt(ctx context.Context, index int) error {
	bookings, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if index < 0 || index >= len(bookings) {
		application.LogDebug(ctx, s.logger, "delete index out of range, ignoring", map[string]interface{}{
			"index": index,
			"total": len(bookings),
		})
		return nil
	}

	bookings = slices.Delete(bookings, index, index+1)
	if err := s.write(ctx, bookings); err != nil {
		return err
	}

	application.LogInfo(ctx, s.logger, "booking deleted", map[string]interface{}{
		"index": index,
		"total": len(bookings),
	})
	return nil
}

// write grava num arquivo temporário do mesmo diretório e renomeia por cima.
func (s *JSONFileStore) write(ctx context.Context, bookings []domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create booking store dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".bookings-*.json")
	if err != nil {
		return fmt.Errorf("create temp booking file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write booking store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close booking store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		application.LogError(ctx, s.logger, "failed to replace booking store", err, map[string]interface{}{"path": s.path})
		return fmt.Errorf("replace booking store %s: %w", s.path, err)
	}
	return nil
}
