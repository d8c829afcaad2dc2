package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"delivered-status-service/internal/model"
)

// MemoryURIPrefix selecciona el repositorio en memoria en lugar de MongoDB.
const MemoryURIPrefix = "memory://"

// Store es lo que implementan ambos repositorios.
type Store interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string, record model.StatusRecord) error
	RevertStatus(ctx context.Context, recordType, from, to string) (int64, error)
	CountByStatus(ctx context.Context, statuses []string) ([]StatusTotal, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status string) ([]*model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Order, error)
}

// Open conecta a MongoDB y verifica la conexión. Con una URI memory:// devuelve
// un repositorio en memoria vacío. La función close libera la conexión.
func Open(ctx context.Context, uri, dbName string) (Store, func(context.Context) error, error) {
	if strings.HasPrefix(uri, MemoryURIPrefix) {
		return NewMemoryOrderRepository(), func(context.Context) error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return NewMongoOrderRepository(client.Database(dbName)), client.Disconnect, nil
}
