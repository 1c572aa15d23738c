package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"portal/backend/internal/entity"
)

// Directory is the employee-directory surface the portal consumes. The
// sheet-backed repository implements it; Person decorates it.
type Directory interface {
	Lookup(ctx context.Context, employeeName string) (entity.Employee, error)
	LookupByCode(ctx context.Context, employeeCode string) (entity.Employee, error)
}

// Person caches directory lookups in redis so the Person collection is
// not re-read on every request. Entries expire after the TTL; every
// redis failure falls through to the sheet, so the cache can never make
// a lookup fail. Misses (unknown employees) are not cached.
type Person struct {
	client *redis.Client
	next   Directory
	ttl    time.Duration
}

func NewPerson(client *redis.Client, next Directory, ttl time.Duration) *Person {
	return &Person{client: client, next: next, ttl: ttl}
}

func (p *Person) Lookup(ctx context.Context, employeeName string) (entity.Employee, error) {
	return p.lookup(ctx, "person:name:"+employeeName, func(ctx context.Context) (entity.Employee, error) {
		return p.next.Lookup(ctx, employeeName)
	})
}

func (p *Person) LookupByCode(ctx context.Context, employeeCode string) (entity.Employee, error) {
	return p.lookup(ctx, "person:code:"+employeeCode, func(ctx context.Context) (entity.Employee, error) {
		return p.next.LookupByCode(ctx, employeeCode)
	})
}

func (p *Person) lookup(ctx context.Context, key string, miss func(ctx context.Context) (entity.Employee, error)) (entity.Employee, error) {
	raw, err := p.client.Get(ctx, key).Result()
	if err == nil {
		var employee entity.Employee
		if err := json.Unmarshal([]byte(raw), &employee); err == nil {
			return employee, nil
		}
		log.Printf("cache: dropping unreadable entry %q", key)
	} else if err != redis.Nil {
		log.Printf("cache: redis get %q: %v", key, err)
	}

	employee, err := miss(ctx)
	if err != nil {
		return entity.Employee{}, err
	}

	if encoded, err := json.Marshal(employee); err == nil {
		if err := p.client.Set(ctx, key, encoded, p.ttl).Err(); err != nil {
			log.Printf("cache: redis set %q: %v", key, err)
		}
	}

	return employee, nil
}
