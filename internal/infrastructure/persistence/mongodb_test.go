package persistence

import (
	"context"
	"testing"
)

func TestNewMongoClientRejectsInvalidURI(t *testing.T) {
	client, db, err := NewMongoClient(context.Background(), MongoConfig{URI: "not-a-mongo-uri", Database: "silentskies"})
	if err == nil {
		t.Fatalf("expected an error for an invalid URI")
	}
	if client != nil || db != nil {
		t.Fatalf("expected no client on failure")
	}
}
