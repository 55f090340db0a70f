package adapter

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/go-busfinder/pkg/application"
)

// ConsumeFunc recebe o nome do evento e o payload já decodificado.
type ConsumeFunc[D any] func(ctx context.Context, eventName string, payload D) error

// RegisterConsumers adiciona ao router um handler por tópico. O nome do evento
// vem dos metadados; se faltar, usa o tópico.
func RegisterConsumers[D any](router *message.Router, subscriber message.Subscriber, topics []string, fn ConsumeFunc[D]) {
	for _, topic := range topics {
		topic := topic
		router.AddNoPublisherHandler("consume_"+topic, topic, subscriber, func(msg *message.Message) error {
			payload, err := application.UnmarshalPayload[D](msg.Payload)
			if err != nil {
				return err
			}

			eventName := msg.Metadata.Get(EventNameMetadataKey)
			if eventName == "" {
				eventName = topic
			}
			return fn(msg.Context(), eventName, payload)
		})
	}
}
