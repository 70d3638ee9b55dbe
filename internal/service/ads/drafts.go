package ads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
)

// DraftView is the client-facing draft.
type DraftView struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func shapeDraft(d *db.AdDraft) DraftView {
	return DraftView{ID: d.ID, Payload: json.RawMessage(d.Payload), CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

func (s *Service) ListDrafts(ctx context.Context, p auth.Principal) ([]DraftView, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	drafts, err := s.drafts.List(ctx, uid)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	out := make([]DraftView, 0, len(drafts))
	for i := range drafts {
		out = append(out, shapeDraft(&drafts[i]))
	}
	return out, nil
}

// CreateDraft stores a new draft unless the caller already holds the maximum.
// The count and the insert run under a lock on the user row so two
// concurrent creations cannot both slip under the limit.
func (s *Service) CreateDraft(ctx context.Context, p auth.Principal, payload json.RawMessage) (*DraftView, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	limit := s.appCtx.Config.Ads.DraftLimit
	draft := &db.AdDraft{UserID: uid, Payload: datatypes.JSON(payload)}
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drafts := s.drafts.WithTx(tx)
		if err := drafts.LockOwner(ctx, uid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return svcErr.Unauthorized("account no longer exists")
			}
			return err
		}
		count, err := drafts.Count(ctx, uid)
		if err != nil {
			return err
		}
		if limit > 0 && count >= limit {
			return svcErr.Conflict(svcErr.CodeDraftLimitReached,
				fmt.Sprintf("you can keep at most %d drafts, finish or delete one first", limit))
		}
		return drafts.Create(ctx, draft)
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}

	v := shapeDraft(draft)
	return &v, nil
}

func (s *Service) UpdateDraft(ctx context.Context, p auth.Principal, id string, payload json.RawMessage) (*DraftView, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	draft, err := s.drafts.Update(ctx, id, uid, datatypes.JSON(payload))
	if err != nil {
		return nil, draftError(err)
	}
	v := shapeDraft(draft)
	return &v, nil
}

func (s *Service) DeleteDraft(ctx context.Context, p auth.Principal, id string) error {
	uid, err := requireUser(p)
	if err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, id, uid); err != nil {
		return draftError(err)
	}
	return nil
}

// DeleteAllDrafts removes every draft of the caller and returns how many.
func (s *Service) DeleteAllDrafts(ctx context.Context, p auth.Principal) (int64, error) {
	uid, err := requireUser(p)
	if err != nil {
		return 0, err
	}
	n, err := s.drafts.DeleteAll(ctx, uid)
	if err != nil {
		return 0, svcErr.Map(err)
	}
	return n, nil
}

// validatePayload accepts any JSON object.
func validatePayload(payload json.RawMessage) error {
	var obj map[string]any
	if len(payload) == 0 || json.Unmarshal(payload, &obj) != nil || obj == nil {
		return svcErr.InvalidArgument("invalid draft",
			svcErr.FieldError{Field: "payload", Message: "must be a JSON object"})
	}
	return nil
}

func draftError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound(svcErr.CodeDraftNotFound, "draft not found")
	}
	return svcErr.Map(err)
}
