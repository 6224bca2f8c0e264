package contacts

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/multicache"
	"github.com/unkn0wn-root/multicache/codec"
)

const (
	ContactsCache = "contacts"
	FriendsCache  = "friend-list"
)

type Service struct {
	store    Store
	contacts *multicache.Typed[Contact]
	friends  *multicache.Typed[Contact]
	log      *zap.Logger
}

// NewService binds the service to the "contacts" and "friend-list" caches of
// reg. Both must be registered.
func NewService(store Store, reg *multicache.Registry, hooks multicache.Hooks, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: store, log: log}
	for name, dst := range map[string]**multicache.Typed[Contact]{
		ContactsCache: &s.contacts,
		FriendsCache:  &s.friends,
	} {
		h, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("contacts: cache %q is not configured", name)
		}
		*dst = multicache.NewTyped[Contact](h, codec.JSON[Contact]{}, hooks)
	}
	return s, nil
}

func key(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Service) FindAll(ctx context.Context) ([]Contact, error) {
	return s.store.FindAll(ctx)
}

// FindByID reads through the contacts cache. Misses are not cached.
func (s *Service) FindByID(ctx context.Context, id int64) (Contact, error) {
	return multicache.Cacheable(ctx, s.contacts, key(id), func(ctx context.Context) (Contact, error) {
		s.log.Info("contact not in cache, retrieving", zap.Int64("id", id))
		return s.find(ctx, id)
	})
}

// FindFriendByID reads through the friend-list cache.
func (s *Service) FindFriendByID(ctx context.Context, id int64) (Contact, error) {
	return multicache.Cacheable(ctx, s.friends, key(id), func(ctx context.Context) (Contact, error) {
		s.log.Info("friend not in cache, retrieving", zap.Int64("id", id))
		return s.find(ctx, id)
	})
}

func (s *Service) find(ctx context.Context, id int64) (Contact, error) {
	c, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	if !ok {
		return Contact{}, &NotFoundError{ID: id}
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, c Contact) (Contact, error) {
	c.ID = 0
	return s.store.Save(ctx, c)
}

// Update replaces the contact at id and evicts its cache entry. A body id of
// 0 means "same as path".
func (s *Service) Update(ctx context.Context, id int64, c Contact) (Contact, error) {
	if c.ID != 0 && c.ID != id {
		return Contact{}, &MismatchedIDsError{PathID: id, BodyID: c.ID}
	}
	var out Contact
	err := multicache.Evicting(ctx, s.contacts, key(id), func(ctx context.Context) error {
		rec, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		rec.Name, rec.Email, rec.Phone = c.Name, c.Email, c.Phone
		out, err = s.store.Save(ctx, rec)
		return err
	})
	return out, err
}

// Delete removes the contact if present and evicts its cache entry. Deleting
// a missing contact is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return multicache.Evicting(ctx, s.contacts, key(id), func(ctx context.Context) error {
		ok, err := s.store.ExistsByID(ctx, id)
		if err != nil || !ok {
			return err
		}
		return s.store.DeleteByID(ctx, id)
	})
}

// ClearCache evicts every entry of the contacts cache.
func (s *Service) ClearCache(ctx context.Context) error {
	return multicache.EvictingAll(ctx, s.contacts, func(context.Context) error {
		s.log.Info("contacts cache cleared")
		return nil
	})
}
