package connection

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

// FirestoreConnection builds a Firestore client from a service account key
// file. The caller owns the client and closes it on teardown.
func FirestoreConnection(ctx context.Context, credentialsFile string) (*firestore.Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("no credentials file configured")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firestore client: %w", err)
	}

	log.Println("Firestore connection successful")
	return client, nil
}
