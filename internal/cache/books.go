// Package cache provides a Redis read-through layer in front of the book
// repository. Only single-entity lookups are cached; pages always hit the
// store so ordering and counts stay exact.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/pagination"
)

const keyPrefix = "bookcatalog:book:"

// generationTTL keeps a book's eviction counter alive well past any in-flight load.
const generationTTL = time.Hour

// opTimeout bounds a single cache round trip so a slow Redis never stalls a request.
const opTimeout = 500 * time.Millisecond

var errStaleFill = errors.New("book was written while it was being loaded")

// BookStore is the repository being cached.
type BookStore interface {
	FindAll(ctx context.Context, pageable pagination.Pageable) (pagination.Page[entities.Book], error)
	FindByID(ctx context.Context, id int64) (*entities.Book, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, book *entities.Book) (*entities.Book, error)
	DeleteByID(ctx context.Context, id int64) error
}

// BookRepository decorates a BookStore with a Redis entity cache.
type BookRepository struct {
	store  BookStore
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewClient builds a Redis client for the cache.
func NewClient(addr, password string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}), nil
}

// NewBookRepository wraps store with a cache backed by client.
func NewBookRepository(store BookStore, client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *BookRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BookRepository{store: store, client: client, ttl: ttl, logger: logger}
}

func (r *BookRepository) FindAll(ctx context.Context, pageable pagination.Pageable) (pagination.Page[entities.Book], error) {
	return r.store.FindAll(ctx, pageable)
}

// FindByID serves from Redis when possible and populates it on a miss.
// The fill is dropped if the book was saved or deleted during the load.
func (r *BookRepository) FindByID(ctx context.Context, id int64) (*entities.Book, error) {
	if book, ok := r.get(ctx, id); ok {
		return book, nil
	}

	gen, genErr := r.generation(ctx, id)
	book, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		r.set(ctx, book, gen)
	}
	return book, nil
}

// ExistsByID always asks the store. Writes rely on its answer.
func (r *BookRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.store.ExistsByID(ctx, id)
}

// Save writes through to the store and then evicts the cached entry.
func (r *BookRepository) Save(ctx context.Context, book *entities.Book) (*entities.Book, error) {
	saved, err := r.store.Save(ctx, book)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, saved.ID)
	return saved, nil
}

// DeleteByID deletes from the store and then evicts the cached entry.
func (r *BookRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

// Ping reports whether Redis is reachable.
func (r *BookRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *BookRepository) get(ctx context.Context, id int64) (*entities.Book, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.logger.WithError(err).WithField("book_id", id).Warn("cache read failed, falling back to store")
		return nil, false
	}

	var book entities.Book
	if err := json.Unmarshal(raw, &book); err != nil {
		r.logger.WithError(err).WithField("book_id", id).Warn("dropping undecodable cache entry")
		r.evict(ctx, id)
		return nil, false
	}
	return &book, true
}

// generation reads the counter that evict bumps. An absent counter reads as "".
func (r *BookRepository) generation(ctx context.Context, id int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gen, err := r.client.Get(ctx, generationKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		r.logger.WithError(err).WithField("book_id", id).Warn("cache generation read failed, skipping fill")
		return "", err
	}
	return gen, nil
}

// set stores book only if no eviction happened since gen was read.
func (r *BookRepository) set(ctx context.Context, book *entities.Book, gen string) {
	raw, err := json.Marshal(book)
	if err != nil {
		r.logger.WithError(err).WithField("book_id", book.ID).Warn("failed to encode book for cache")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	genKey := generationKey(book.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(book.ID), raw, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		r.logger.WithField("book_id", book.ID).Debug("skipping cache fill for a book written during the load")
	default:
		r.logger.WithError(err).WithField("book_id", book.ID).Warn("cache write failed")
	}
}

// evict drops the entry and bumps the generation so in-flight fills are discarded.
func (r *BookRepository) evict(ctx context.Context, id int64) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	genKey := generationKey(id)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(id))
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("book_id", id).Warn("cache eviction failed")
	}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func generationKey(id int64) string {
	return key(id) + ":gen"
}

// String identifies the cache in logs.
func (r *BookRepository) String() string {
	return fmt.Sprintf("redis(%s)", r.client.Options().Addr)
}
