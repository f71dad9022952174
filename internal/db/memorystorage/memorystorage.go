// Package memorystorage provides a purely in-memory storage backend.
// It reuses the jsondb implementation without a backing file and is used
// when neither a database DSN nor a storage file is configured, and in tests.
package memorystorage

import (
	"github.com/akarasev/shurl/internal/db/jsondb"
	"github.com/akarasev/shurl/internal/models"
	"github.com/akarasev/shurl/internal/user"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:             map[string]*user.User{},
				Links:             map[string]*models.Link{},
				UsernameToUserID:  map[string]string{},
				ShortCodeToLinkID: map[string]string{},
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
