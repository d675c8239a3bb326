package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DATABASE = "gastmanager"

func GetClient(ctx context.Context, uri string) (*mongo.Client, error) {
	optionsClient := options.Client().ApplyURI(uri)
	return mongo.Connect(ctx, optionsClient)
}
