package infrastructure

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNoHandler indica que nenhum handler foi registrado para a mensagem.
var ErrNoHandler = errors.New("no handler registered")

func GenerateUUID() string {
	return uuid.New().String()
}
