package app

import (
	"fmt"

	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/store"
)

// Add builds a memo from d and stores it.
func (a *App) Add(d memo.Draft) (memo.Memo, error) {
	m, err := d.Build(a.now())
	if err != nil {
		return memo.Memo{}, err
	}
	id, err := a.Store.InsertMemo(m)
	if err != nil {
		return memo.Memo{}, err
	}
	m.ID = id
	return m, nil
}

// Record applies a lifecycle event to the memo named by idOrPrefix, saves it
// and appends it to the activity log. minutes is ignored for accept and reject.
func (a *App) Record(idOrPrefix string, kind store.ActivityKind, minutes int) (memo.Memo, error) {
	id, err := a.Store.ResolveID(idOrPrefix)
	if err != nil {
		return memo.Memo{}, err
	}
	m, err := a.Store.GetMemo(id)
	if err != nil {
		return memo.Memo{}, err
	}

	now := a.now()
	// Roll stale day flags over before applying today's event.
	m, _ = memo.Reset(m, now)

	switch kind {
	case store.ActivityAccept:
		memo.Accept(&m, now)
		minutes = 0
	case store.ActivityReject:
		memo.Reject(&m, now)
		minutes = 0
	case store.ActivitySession:
		err = memo.LogSession(&m, minutes, now)
	case store.ActivityComplete:
		err = memo.Complete(&m, minutes, now)
	default:
		return memo.Memo{}, fmt.Errorf("app: unknown activity %q", kind)
	}
	if err != nil {
		return memo.Memo{}, err
	}

	if err := a.Store.UpdateMemo(m); err != nil {
		return memo.Memo{}, err
	}
	if err := a.Store.RecordActivity(store.Activity{MemoID: m.ID, Kind: kind, Minutes: minutes, CreatedAt: now}); err != nil {
		return memo.Memo{}, err
	}
	return m, nil
}

// Remove deletes the memo named by idOrPrefix.
func (a *App) Remove(idOrPrefix string) (string, error) {
	id, err := a.Store.ResolveID(idOrPrefix)
	if err != nil {
		return "", err
	}
	if err := a.Store.DeleteMemo(id); err != nil {
		return "", err
	}
	a.invalidate(id)
	return id, nil
}

func (a *App) invalidate(id string) {
	if c := a.Engine.EnrichCache(); c != nil {
		c.Invalidate(id)
	}
}
