package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Init настраивает структурированный логгер сервиса
func Init(service, level, format string) *logrus.Entry {
	return New(os.Stdout, service, level, format)
}

func New(out io.Writer, service, level, format string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(out)

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log.WithField("service", service)
}

// WithRequestID добавляет request_id к записи
func WithRequestID(log logrus.FieldLogger, requestID string) logrus.FieldLogger {
	if requestID == "" {
		return log
	}
	return log.WithField("request_id", requestID)
}
