package adapter

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/mateusmacedo/go-busfinder/pkg/application"
)

// ComponentField identifica nos logs as entradas vindas do watermill.
const ComponentField = "component"

// fieldAliases traduz os campos do watermill para os nomes usados por
// WatermillEventBus, para que publish e consumo apareçam com as mesmas chaves.
var fieldAliases = map[string]string{
	"topic":        EventNameMetadataKey,
	"message_uuid": "message_id",
}

type logLevel int

const (
	levelTrace logLevel = iota
	levelDebug
	levelInfo
	levelError
)

// brokerLogger escreve as mensagens do watermill no AppLogger com campos fixos
// acumulados por With.
type brokerLogger struct {
	appLogger application.AppLogger
	fields    map[string]interface{}
}

// NewWatermillLoggerAdapter faz publishers, subscribers e router do watermill
// escreverem no AppLogger da aplicação, marcados com component=broker.
func NewWatermillLoggerAdapter(appLogger application.AppLogger) watermill.LoggerAdapter {
	return &brokerLogger{
		appLogger: appLogger,
		fields:    map[string]interface{}{ComponentField: "broker"},
	}
}

func (l *brokerLogger) Error(msg string, err error, fields watermill.LogFields) {
	merged := l.merge(fields)
	if err != nil {
		merged["error"] = err.Error()
	}
	l.write(levelError, msg, merged)
}

func (l *brokerLogger) Info(msg string, fields watermill.LogFields) {
	l.write(levelInfo, msg, l.merge(fields))
}

func (l *brokerLogger) Debug(msg string, fields watermill.LogFields) {
	l.write(levelDebug, msg, l.merge(fields))
}

func (l *brokerLogger) Trace(msg string, fields watermill.LogFields) {
	l.write(levelTrace, msg, l.merge(fields))
}

func (l *brokerLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &brokerLogger{
		appLogger: l.appLogger,
		fields:    l.merge(fields),
	}
}

func (l *brokerLogger) write(level logLevel, msg string, fields map[string]interface{}) {
	ctx := context.Background()
	switch level {
	case levelError:
		l.appLogger.Error(ctx, msg, fields)
	case levelInfo:
		l.appLogger.Info(ctx, msg, fields)
	case levelDebug:
		l.appLogger.Debug(ctx, msg, fields)
	default:
		l.appLogger.Trace(ctx, msg, fields)
	}
}

// merge devolve um mapa novo; o receptor nunca é alterado.
func (l *brokerLogger) merge(fields watermill.LogFields) map[string]interface{} {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		if alias, ok := fieldAliases[k]; ok {
			k = alias
		}
		merged[k] = v
	}
	return merged
}
