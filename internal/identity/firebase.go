package identity

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// FirebaseClient implements Verifier and Directory on the Firebase Auth SDK.
type FirebaseClient struct {
	client *auth.Client
}

func NewFirebaseClient(ctx context.Context, projectID string) (*FirebaseClient, error) {
	if projectID == "" {
		return nil, errors.New("firebase project id is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseClient{client: client}, nil
}

func (f *FirebaseClient) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}
	return decoded.UID, nil
}

func (f *FirebaseClient) Lookup(ctx context.Context, uid string) (*Principal, error) {
	user, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &Principal{UID: user.UID, DisplayName: user.DisplayName}, nil
}
