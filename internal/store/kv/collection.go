package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/listenup-flags/internal/store"
)

// sep separates the parts of composite index keys. It cannot occur in
// machine names, entity types or UUID session ids.
const sep = "\x00"

// collection provides CRUD over one record type stored as JSON under
// "<prefix><id>", with secondary indexes kept under "idx:<prefix><name>:".
type collection[T any] struct {
	prefix  string
	idOf    func(*T) string
	indexes []index[T]
}

type index[T any] struct {
	name   string
	unique bool
	keyGen func(*T) []string
}

func newCollection[T any](prefix string, idOf func(*T) string) *collection[T] {
	return &collection[T]{prefix: prefix, idOf: idOf}
}

// withIndex adds a non-unique secondary index.
func (c *collection[T]) withIndex(name string, keyGen func(*T) []string) *collection[T] {
	c.indexes = append(c.indexes, index[T]{name: name, keyGen: keyGen})
	return c
}

// withUniqueIndex adds a secondary index whose values may map to one record only.
func (c *collection[T]) withUniqueIndex(name string, keyGen func(*T) []string) *collection[T] {
	c.indexes = append(c.indexes, index[T]{name: name, unique: true, keyGen: keyGen})
	return c
}

func (c *collection[T]) key(id string) []byte {
	return []byte(c.prefix + id)
}

func (c *collection[T]) indexPrefix(name, value string) string {
	return "idx:" + c.prefix + name + ":" + value
}

func (c *collection[T]) indexKey(idx index[T], value, id string) []byte {
	if idx.unique {
		return []byte(c.indexPrefix(idx.name, value))
	}
	return []byte(c.indexPrefix(idx.name, value) + sep + id)
}

// insert stores a new record. Returns store.ErrAlreadyExists if the id or a
// unique index value is taken.
func (c *collection[T]) insert(txn *badger.Txn, rec *T) error {
	id := c.idOf(rec)

	if _, err := txn.Get(c.key(id)); err == nil {
		return store.ErrAlreadyExists
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("check existing key: %w", err)
	}

	for _, idx := range c.indexes {
		if !idx.unique {
			continue
		}
		for _, value := range idx.keyGen(rec) {
			_, err := txn.Get(c.indexKey(idx, value, id))
			if err == nil {
				return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("index %s conflict", idx.name))
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check index key: %w", err)
			}
		}
	}

	return c.write(txn, id, rec)
}

// replace overwrites an existing record and rebuilds its index entries.
// Returns store.ErrNotFound if there is no record with the same id.
func (c *collection[T]) replace(txn *badger.Txn, rec *T) error {
	id := c.idOf(rec)
	old, err := c.load(txn, id)
	if err != nil {
		return err
	}
	if err := c.deleteIndexes(txn, id, old); err != nil {
		return err
	}
	return c.write(txn, id, rec)
}

// upsert inserts or replaces a record.
func (c *collection[T]) upsert(txn *badger.Txn, rec *T) error {
	err := c.replace(txn, rec)
	if errors.Is(err, store.ErrNotFound) {
		return c.write(txn, c.idOf(rec), rec)
	}
	return err
}

func (c *collection[T]) write(txn *badger.Txn, id string, rec *T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := txn.Set(c.key(id), data); err != nil {
		return fmt.Errorf("set key: %w", err)
	}
	for _, idx := range c.indexes {
		for _, value := range idx.keyGen(rec) {
			if err := txn.Set(c.indexKey(idx, value, id), []byte(id)); err != nil {
				return fmt.Errorf("set index key: %w", err)
			}
		}
	}
	return nil
}

// load reads one record. Returns store.ErrNotFound if it does not exist.
func (c *collection[T]) load(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(c.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}

	var rec T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// remove deletes a record and its index entries.
// Returns store.ErrNotFound if it does not exist.
func (c *collection[T]) remove(txn *badger.Txn, id string) error {
	rec, err := c.load(txn, id)
	if err != nil {
		return err
	}
	if err := c.deleteIndexes(txn, id, rec); err != nil {
		return err
	}
	if err := txn.Delete(c.key(id)); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}

func (c *collection[T]) deleteIndexes(txn *badger.Txn, id string, rec *T) error {
	for _, idx := range c.indexes {
		for _, value := range idx.keyGen(rec) {
			if err := txn.Delete(c.indexKey(idx, value, id)); err != nil {
				return fmt.Errorf("delete index key: %w", err)
			}
		}
	}
	return nil
}

// lookup resolves a unique index value to a record.
func (c *collection[T]) lookup(txn *badger.Txn, name, value string) (*T, error) {
	item, err := txn.Get([]byte(c.indexPrefix(name, value)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return c.load(txn, string(id))
}

// ids returns the record ids stored under a non-unique index value.
func (c *collection[T]) ids(txn *badger.Txn, name, value string) []string {
	prefix := []byte(c.indexPrefix(name, value) + sep)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		ids = append(ids, strings.TrimPrefix(key, string(prefix)))
	}
	return ids
}

// all returns every record whose id starts with idPrefix.
func (c *collection[T]) all(txn *badger.Txn, idPrefix string) ([]*T, error) {
	prefix := c.key(idPrefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true

	it := txn.NewIterator(opts)
	defer it.Close()

	recs := []*T{}
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var rec T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
		if err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}
