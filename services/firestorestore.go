package services

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fastboard/model"
)

const (
	syncCollection = "SyncData"
	syncDocument   = "current"
)

// FirestoreStore keeps the envelope in a single Firestore document.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Load(ctx context.Context) (*model.SyncData, error) {
	snap, err := s.client.Collection(syncCollection).Doc(syncDocument).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return emptyEnvelope(), nil
	}
	if err != nil {
		return nil, err
	}

	var data model.SyncData
	if err := snap.DataTo(&data); err != nil {
		return nil, err
	}
	if data.Projects == nil {
		data.Projects = []model.Project{}
	}
	if data.Tasks == nil {
		data.Tasks = []model.Task{}
	}
	return &data, nil
}

func (s *FirestoreStore) Save(ctx context.Context, projects []model.Project, tasks []model.Task) (time.Time, error) {
	data := model.SyncData{
		Projects: projects,
		Tasks:    tasks,
		LastSync: time.Now().UTC(),
	}
	_, err := s.client.Collection(syncCollection).Doc(syncDocument).Set(ctx, data)
	if err != nil {
		return time.Time{}, err
	}
	return data.LastSync, nil
}

func (s *FirestoreStore) Name() string { return "firestore" }
