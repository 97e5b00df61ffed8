// Package customdict stores user-supplied dictionary words in Redis so they
// survive restarts and are shared between corrector instances. Words added
// here are treated as known vocabulary by the corrector.
package customdict

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis set the dictionary lives under when no key is
// configured.
const DefaultKey = "contextspell:customdict"

// Dict is a Redis-backed set of custom words.
type Dict struct {
	client *redis.Client
	key    string
}

// New wraps a Redis client. An empty key selects DefaultKey.
func New(client *redis.Client, key string) *Dict {
	if key == "" {
		key = DefaultKey
	}
	return &Dict{client: client, key: key}
}

// Add inserts a word. Words are stored lower-cased.
func (d *Dict) Add(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return fmt.Errorf("custom dictionary: empty word")
	}
	if err := d.client.SAdd(ctx, d.key, word).Err(); err != nil {
		return fmt.Errorf("adding custom word: %w", err)
	}
	return nil
}

// Remove deletes a word.
func (d *Dict) Remove(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if err := d.client.SRem(ctx, d.key, word).Err(); err != nil {
		return fmt.Errorf("removing custom word: %w", err)
	}
	return nil
}

// Has reports whether a word is present.
func (d *Dict) Has(ctx context.Context, word string) (bool, error) {
	ok, err := d.client.SIsMember(ctx, d.key, strings.ToLower(word)).Result()
	if err != nil {
		return false, fmt.Errorf("checking custom word: %w", err)
	}
	return ok, nil
}

// All returns every stored word.
func (d *Dict) All(ctx context.Context) ([]string, error) {
	words, err := d.client.SMembers(ctx, d.key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing custom words: %w", err)
	}
	return words, nil
}
