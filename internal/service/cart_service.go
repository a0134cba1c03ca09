package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"print-order-service/internal/cache"
	"print-order-service/internal/logging"
	"print-order-service/internal/model"
)

type CartService struct {
	repo  CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // collapses concurrent cache misses per user
}

// NewCartService wires the store. c may be nil to run without a read cache.
func NewCartService(repo CartRepository, c cache.CartCache) *CartService {
	return &CartService{repo: repo, cache: c}
}

// Add stores a new line for userID. Only the identity is required; a blank
// title becomes DefaultLineTitle and an unset kind is inferred.
func (s *CartService) Add(ctx context.Context, userID string, line model.CartLine) (*model.CartLine, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	normalizeLine(&line)
	line.UserID = userID
	line.CreatedAt = time.Now().UTC()

	if err := s.repo.Insert(ctx, &line); err != nil {
		logging.FromContext(ctx).Error("cart insert failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, userID)
	return &line, nil
}

// AddMany stores several lines at once and returns how many were added.
func (s *CartService) AddMany(ctx context.Context, userID string, lines []model.CartLine) (int, error) {
	if userID == "" {
		return 0, ErrMissingIdentity
	}
	if len(lines) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	ptrs := make([]*model.CartLine, len(lines))
	for i := range lines {
		l := lines[i]
		normalizeLine(&l)
		l.UserID = userID
		l.CreatedAt = now
		ptrs[i] = &l
	}

	if err := s.repo.InsertMany(ctx, ptrs); err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return len(ptrs), nil
}

// List returns the user's lines, newest first.
func (s *CartService) List(ctx context.Context, userID string) ([]model.CartLine, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	logger := logging.FromContext(ctx)

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		if s.cache != nil {
			lines, err := s.cache.Get(ctx, userID)
			if err == nil {
				return lines, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				logger.Warn("cart cache get failed", zap.Error(err))
			}
		}

		// The version is read before the store so that a write landing in
		// between makes the fill below a no-op.
		var version int64
		fill := s.cache != nil
		if fill {
			v, err := s.cache.Version(ctx, userID)
			if err != nil {
				logger.Warn("cart cache version failed", zap.Error(err))
				fill = false
			}
			version = v
		}

		lines, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		if fill {
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			err := s.cache.Set(cctx, userID, version, lines)
			cancel()
			if err != nil && !errors.Is(err, cache.ErrStale) {
				logger.Warn("cart cache set failed", zap.Error(err))
			}
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers may rewrite URLs in place; never hand out the shared slice.
	shared := v.([]model.CartLine)
	out := make([]model.CartLine, len(shared))
	for i, l := range shared {
		out[i] = cloneLine(l)
	}
	return out, nil
}

// Remove deletes one line owned by userID.
func (s *CartService) Remove(ctx context.Context, userID, lineID string) (*model.CartLine, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	line, err := s.repo.FindByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.UserID != userID {
		return nil, ErrForbidden
	}

	n, err := s.repo.DeleteForUser(ctx, userID, []string{lineID})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	s.invalidate(ctx, userID)
	return line, nil
}

// RemoveMany deletes the listed lines. It fails with ErrForbidden when any
// existing line belongs to someone else and with ErrNotFound when none of
// the ids exist; otherwise it returns the removed lines.
func (s *CartService) RemoveMany(ctx context.Context, userID string, lineIDs []string) ([]model.CartLine, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	if len(lineIDs) == 0 {
		return nil, ErrNothingSelected
	}

	found, err := s.repo.FindByIDs(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	ids := make([]string, 0, len(found))
	for _, l := range found {
		if l.UserID != userID {
			return nil, ErrForbidden
		}
		ids = append(ids, l.ID.Hex())
	}

	if _, err := s.repo.DeleteForUser(ctx, userID, ids); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return found, nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if _, err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// invalidate runs after every cart write. Reads already in flight are
// detached so later List calls go back to the store.
func (s *CartService) invalidate(ctx context.Context, userID string) {
	s.sfg.Forget(userID)
	if s.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(cctx, userID); err != nil {
		logging.FromContext(ctx).Warn("cart cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// normalizeLine fills the title, infers the kind from the details present,
// takes the quantity from a size breakdown when one is given and falls back
// to the component totals when no line total was sent.
func normalizeLine(l *model.CartLine) {
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		l.Title = model.DefaultLineTitle
	}
	if !l.Kind.Valid() {
		switch {
		case l.Apparel != nil:
			l.Kind = model.LineApparel
		case l.Bulk != nil:
			l.Kind = model.LineBulk
		default:
			l.Kind = model.LineCustomDesign
		}
	}

	var sizes map[string]int
	switch {
	case l.Apparel != nil:
		sizes = l.Apparel.SizeAndQuantity
	case l.Bulk != nil:
		sizes = l.Bulk.SizeAndQuantity
	}
	if n := model.SumSizes(sizes); n > 0 {
		l.Quantity = n
	}
	if l.Total == 0 {
		l.Total = model.Money(l.ProductTotal + l.ImprintTotal + l.OptionsTotal)
	}
}

func cloneLine(l model.CartLine) model.CartLine {
	if l.Options != nil {
		l.Options = append([]string(nil), l.Options...)
	}
	if l.Design != nil {
		d := *l.Design
		d.StickerImageURLs = append([]string(nil), d.StickerImageURLs...)
		l.Design = &d
	}
	if l.Apparel != nil {
		a := *l.Apparel
		a.ImprintFiles = append([]string(nil), a.ImprintFiles...)
		l.Apparel = &a
	}
	if l.Bulk != nil {
		b := *l.Bulk
		l.Bulk = &b
	}
	return l
}
