// Package jsondb implements the storage contract on top of a single JSON
// document file. The whole dataset is kept in memory and flushed to disk
// on Close, which is enough for the single-node document-store semantics
// the service relies on.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/akarasev/shurl/internal/db/storage"
	"github.com/akarasev/shurl/internal/models"
	"github.com/akarasev/shurl/internal/user"
)

// JSONDB is a JSON-file backed implementation of storage.Storage.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the on-disk document layout: the two collections plus
// the lookup indexes rebuilt from them.
type CacheStruct struct {
	Users map[string]*user.User   // keyed by user ID
	Links map[string]*models.Link // keyed by link ID

	UsernameToUserID  map[string]string
	ShortCodeToLinkID map[string]string
}

func emptyCache() CacheStruct {
	return CacheStruct{
		Users:             map[string]*user.User{},
		Links:             map[string]*models.Link{},
		UsernameToUserID:  map[string]string{},
		ShortCodeToLinkID: map[string]string{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(emptyCache(), "", "\t")
	if err != nil {
		return err
	}
	if _, err := dbFile.Write(data); err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New opens the JSON document file, creating and initializing it when it
// does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    emptyCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &db, nil
}

// CreateUser stores a new user. The ID is assigned here when empty.
// Returns storage.ErrConflict when the username is already taken.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, taken := db.Cache.UsernameToUserID[usr.Username]; taken {
		return nil, storage.ErrConflict
	}

	stored := *usr
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	db.Cache.Users[stored.ID] = &stored
	db.Cache.UsernameToUserID[stored.Username] = stored.ID

	return &stored, nil
}

// FindUserByUsername returns storage.ErrNotFound for an unknown username.
func (db *JSONDB) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	userID, found := db.Cache.UsernameToUserID[username]
	if !found {
		return nil, storage.ErrNotFound
	}

	stored := *db.Cache.Users[userID]
	return &stored, nil
}

// CreateLink stores a new link. The ID is assigned here when empty.
// Returns storage.ErrConflict when the short code is already in use.
func (db *JSONDB) CreateLink(ctx context.Context, link *models.Link) (*models.Link, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, taken := db.Cache.ShortCodeToLinkID[link.ShortCode]; taken {
		return nil, storage.ErrConflict
	}

	stored := *link
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	db.Cache.Links[stored.ID] = &stored
	db.Cache.ShortCodeToLinkID[stored.ShortCode] = stored.ID

	return &stored, nil
}

// FindLinkByShortCode returns storage.ErrNotFound for an unknown code.
func (db *JSONDB) FindLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	linkID, found := db.Cache.ShortCodeToLinkID[shortCode]
	if !found {
		return nil, storage.ErrNotFound
	}

	stored := *db.Cache.Links[linkID]
	return &stored, nil
}

// FindLinkByID returns storage.ErrNotFound for an unknown ID.
func (db *JSONDB) FindLinkByID(ctx context.Context, id string) (*models.Link, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	link, found := db.Cache.Links[id]
	if !found {
		return nil, storage.ErrNotFound
	}

	stored := *link
	return &stored, nil
}

// ListLinksByOwner returns every link owned by the given user.
// The result is empty, not an error, when the user owns nothing.
func (db *JSONDB) ListLinksByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	owned := funk.Filter(
		funk.Values(db.Cache.Links),
		func(link *models.Link) bool { return link.OwnerID == ownerID },
	).([]*models.Link)

	result := make([]models.Link, 0, len(owned))
	for _, link := range owned {
		result = append(result, *link)
	}

	return result, nil
}

// DeleteLinkByID removes the link and its short-code index entry.
func (db *JSONDB) DeleteLinkByID(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	link, found := db.Cache.Links[id]
	if !found {
		return storage.ErrNotFound
	}

	delete(db.Cache.ShortCodeToLinkID, link.ShortCode)
	delete(db.Cache.Links, id)

	return nil
}

// Ping always succeeds for the file-backed store.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the in-memory dataset to the JSON document file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
