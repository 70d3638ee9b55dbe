package ads

import (
	"context"

	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
)

// SoftDelete hides the ad from listings and moves it to COMPLETED.
//
// Behavior:
//   - Owner only.
//   - Idempotent: deleting an already deleted ad succeeds and changes nothing.
func (s *Service) SoftDelete(ctx context.Context, p auth.Principal, id string) error {
	uid, err := requireUser(p)
	if err != nil {
		return err
	}

	changed := false
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ads := s.ads.WithTx(tx)
		ad, err := ownedAd(ctx, ads.LockByID, id, uid)
		if err != nil {
			return err
		}
		if ad.DeletedAt != nil {
			return nil
		}
		changed = true
		return ads.MarkDeleted(ctx, id, s.now())
	})
	if err != nil {
		return adError(err)
	}

	if changed {
		s.appCtx.Metrics.Transition("soft_delete")
		s.appCtx.Logger.Info("ad soft-deleted", "ad", id, "user", uid)
	}
	return nil
}

// Repost puts a COMPLETED ad back on the market.
//
// Behavior:
//   - Owner only.
//   - Allowed whenever status is COMPLETED, whether or not the ad is soft-deleted.
//   - Clears deleted_at and renews expires_at.
//   - An ACTIVE ad is rejected with AD_NOT_COMPLETED.
func (s *Service) Repost(ctx context.Context, p auth.Principal, id string) error {
	uid, err := requireUser(p)
	if err != nil {
		return err
	}

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ads := s.ads.WithTx(tx)
		ad, err := ownedAd(ctx, ads.LockByID, id, uid)
		if err != nil {
			return err
		}
		if ad.Status != db.AdStatusCompleted {
			return svcErr.Conflict(svcErr.CodeAdNotCompleted, "only completed ads can be reposted")
		}
		return ads.Reactivate(ctx, id, s.now().AddDate(0, 0, s.appCtx.Config.Ads.ExpiryDays))
	})
	if err != nil {
		return adError(err)
	}

	s.appCtx.Metrics.Transition("repost")
	s.appCtx.Logger.Info("ad reposted", "ad", id, "user", uid)
	return nil
}

// HardDelete permanently removes the ad and everything attached to it.
//
// Behavior:
//   - Owner only.
//   - Media, favorites, flags, views and the ad go in one transaction.
//   - Remote media objects are destroyed after commit; failures are logged
//     and counted but never undo the delete.
func (s *Service) HardDelete(ctx context.Context, p auth.Principal, id string) error {
	uid, err := requireUser(p)
	if err != nil {
		return err
	}

	var media []db.Media
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ads := s.ads.WithTx(tx)
		if _, err := ownedAd(ctx, ads.LockByID, id, uid); err != nil {
			return err
		}
		media, err = ads.MediaOf(ctx, id)
		if err != nil {
			return err
		}
		return ads.Delete(ctx, id)
	})
	if err != nil {
		return adError(err)
	}

	s.appCtx.Metrics.Transition("hard_delete")
	s.appCtx.Logger.Info("ad deleted", "ad", id, "user", uid, "media", len(media))

	purgeCtx := context.WithoutCancel(ctx)
	if rc := s.appCtx.RedisCache; rc != nil {
		if err := rc.DropFavoriteCount(purgeCtx, id); err != nil {
			s.appCtx.Logger.Warn("favorite counter not dropped", "ad", id, "err", err)
		}
	}
	for _, m := range media {
		if err := s.appCtx.Media.Destroy(purgeCtx, m.PublicID); err != nil {
			s.appCtx.Metrics.PurgeFailed()
			s.appCtx.Logger.Warn("media purge failed", "ad", id, "public_id", m.PublicID, "err", err)
		}
	}
	return nil
}

// ExpireAds soft-deletes every live ad past its expiry and returns how many.
func (s *Service) ExpireAds(ctx context.Context) (int64, error) {
	n, err := s.ads.ExpireBefore(ctx, s.now())
	if err != nil {
		s.appCtx.Logger.Error("ExpireAds failed", "err", err)
		return 0, svcErr.Map(err)
	}
	s.appCtx.Metrics.TransitionN("expire", n)
	s.appCtx.Logger.Info("expired ads soft-deleted", "count", n)
	return n, nil
}

// ownedAd locks the ad and checks that uid owns it.
func ownedAd(ctx context.Context, lock func(context.Context, string) (*db.Ad, error), id, uid string) (*db.Ad, error) {
	ad, err := lock(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.UserID != uid {
		return nil, svcErr.Forbidden(svcErr.CodeNotOwner, "you can only manage your own ads")
	}
	return ad, nil
}
