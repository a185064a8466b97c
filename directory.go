package authstate

import (
	"context"
)

// Directory is the thin client for the admin user-management screens. Every
// operation checks the session's role before any network I/O; denial is a
// normal outcome, distinct from authentication failure.
type Directory struct {
	client DirectoryClient
	store  *Store
	logger Logger
}

// NewDirectory returns a directory client gated by the given store
func NewDirectory(client DirectoryClient, store *Store) *Directory {
	return &Directory{
		client: client,
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger sets the directory logger
func (d *Directory) WithLogger(logger Logger) *Directory {
	if logger != nil {
		d.logger = logger
	}
	return d
}

func (d *Directory) authorize(ctx context.Context) (string, error) {
	if !HasAnyRole(d.store.Snapshot(), ElevatedRoles()...) {
		return "", ErrNotAuthorized
	}

	cred, err := d.store.Credential(ctx)
	if err != nil {
		return "", err
	}

	return cred.Token, nil
}

// List fetches every user record
func (d *Directory) List(ctx context.Context) ([]Principal, error) {
	token, err := d.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return d.client.ListUsers(ctx, token)
}

// Update patches a user record and returns the replacement snapshot
func (d *Directory) Update(ctx context.Context, id string, update UserUpdate) (*Principal, error) {
	token, err := d.authorize(ctx)
	if err != nil {
		return nil, err
	}

	principal, err := d.client.UpdateUser(ctx, token, id, update)
	if err != nil {
		d.logger.Error("User update failed", "id", id, "error", err)
		return nil, err
	}
	return principal, nil
}

// Delete removes a user record
func (d *Directory) Delete(ctx context.Context, id string) error {
	token, err := d.authorize(ctx)
	if err != nil {
		return err
	}

	if err := d.client.DeleteUser(ctx, token, id); err != nil {
		d.logger.Error("User delete failed", "id", id, "error", err)
		return err
	}
	return nil
}
