package ads

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/notify"
)

// FavoriteResult is the outcome of a toggle.
type FavoriteResult struct {
	IsFavorited    bool  `json:"is_favorited"`
	FavoritesCount int64 `json:"favorites_count"`
}

// ToggleFavorite adds or removes the caller's favorite on an ad.
//
// Behavior:
//   - The check and the write run in one transaction holding the ad row lock,
//     so two concurrent toggles by the same user end in a consistent state.
//   - Soft-deleted ads cannot be favorited or unfavorited.
//   - The Redis counter is overwritten with the committed count.
//   - The owner is notified when someone else favorites their ad.
//
// Example:
//
//	res, err := svc.ToggleFavorite(ctx, principal, adID)
func (s *Service) ToggleFavorite(ctx context.Context, p auth.Principal, id string) (*FavoriteResult, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}

	var (
		res     FavoriteResult
		ownerID string
	)
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interactions := s.interactions.WithTx(tx)

		ad, err := s.ads.WithTx(tx).LockByID(ctx, id)
		if err != nil {
			return err
		}
		if ad.DeletedAt != nil {
			return gorm.ErrRecordNotFound
		}
		ownerID = ad.UserID

		has, err := interactions.HasFavorite(ctx, uid, id)
		if err != nil {
			return err
		}
		if has {
			if _, err := interactions.RemoveFavorite(ctx, uid, id); err != nil {
				return err
			}
		} else if err := interactions.AddFavorite(ctx, uid, id); err != nil {
			return err
		}
		res.IsFavorited = !has

		res.FavoritesCount, err = interactions.CountFavorites(ctx, id)
		return err
	})
	if err != nil {
		return nil, adError(err)
	}

	s.cacheFavoriteCount(ctx, id, res.FavoritesCount)

	if !res.IsFavorited {
		s.appCtx.Metrics.Interaction("unfavorite")
		return &res, nil
	}
	s.appCtx.Metrics.Interaction("favorite")

	if ownerID != uid {
		ev := notify.FavoriteEvent{
			Type:           notify.RoutingAdFavorited,
			AdID:           id,
			OwnerID:        ownerID,
			ActorID:        uid,
			FavoritesCount: res.FavoritesCount,
			OccurredAt:     s.now(),
		}
		if err := s.appCtx.Notifier.AdFavorited(context.WithoutCancel(ctx), ev); err != nil {
			s.appCtx.Logger.Warn("favorite notification failed", "ad", id, "owner", ownerID, "err", err)
		}
	}
	return &res, nil
}

// Flag reports an ad and returns every flag recorded on it.
// Flagging the same ad twice fails with AD_ALREADY_FLAGGED.
func (s *Service) Flag(ctx context.Context, p auth.Principal, id, reason string) ([]Flagger, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}

	var flaggers []Flagger
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interactions := s.interactions.WithTx(tx)

		ad, err := s.ads.WithTx(tx).LockByID(ctx, id)
		if err != nil {
			return err
		}
		if ad.DeletedAt != nil {
			return gorm.ErrRecordNotFound
		}

		has, err := interactions.HasFlag(ctx, uid, id)
		if err != nil {
			return err
		}
		if has {
			return alreadyFlagged()
		}
		if err := interactions.AddFlag(ctx, uid, id, reason); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return alreadyFlagged()
			}
			return err
		}

		flags, err := interactions.ListFlaggers(ctx, id)
		if err != nil {
			return err
		}
		flaggers = shapeFlaggers(flags)
		return nil
	})
	if err != nil {
		return nil, adError(err)
	}

	s.appCtx.Metrics.Interaction("flag")
	s.appCtx.Logger.Info("ad flagged", "ad", id, "user", uid, "flags", len(flaggers))
	return flaggers, nil
}

// RecordView counts a view of the ad.
//
// Behavior:
//   - A repeated view by the same user is a successful no-op (counted = false).
//   - Views without a user id are always counted.
//   - The view row and the counter bump commit together.
func (s *Service) RecordView(ctx context.Context, p auth.Principal, id string) (counted bool, err error) {
	var viewer *string
	if uid := p.CallerID(); uid != "" {
		viewer = &uid
	}

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ads := s.ads.WithTx(tx)

		ad, err := ads.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if ad.DeletedAt != nil {
			return gorm.ErrRecordNotFound
		}

		counted, err = s.interactions.WithTx(tx).InsertView(ctx, id, viewer)
		if err != nil || !counted {
			return err
		}
		return ads.IncrementViews(ctx, id)
	})
	if err != nil {
		return false, adError(err)
	}

	if counted {
		s.appCtx.Metrics.Interaction("view")
	}
	return counted, nil
}

func alreadyFlagged() error {
	return svcErr.AlreadyExists(svcErr.CodeAlreadyFlagged, "you have already flagged this ad")
}
