package persistence

import (
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects lazily; callers Ping before relying on the client
func NewMongoDb(host, port, user, password, dbName string) (*mongo.Client, error) {
	if host == "" {
		return nil, fmt.Errorf("mongo host not configured")
	}
	uri := fmt.Sprintf("mongodb://%s:%s/%s", host, port, dbName)
	if user != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			url.QueryEscape(user), url.QueryEscape(password), host, port, dbName)
	}
	return mongo.Connect(options.Client().ApplyURI(uri))
}
