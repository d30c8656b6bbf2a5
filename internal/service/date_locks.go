package service

import (
	"context"
	"errors"
	"sort"
	"time"

	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
	"github.com/noah-isme/exam-seat-api/pkg/lock"
)

// lockDates takes the allocation lock of every distinct date of an exam, in key order so two
// callers covering overlapping dates cannot deadlock. The returned func releases all of them.
func lockDates(ctx context.Context, locker lock.Locker, examID string, dates []time.Time) (func(), error) {
	seen := make(map[string]struct{}, len(dates))
	keys := make([]string, 0, len(dates))
	for _, date := range dates {
		key := lockKey(examID, date)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, key := range keys {
		release, err := locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, lockError(err)
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

func lockError(err error) error {
	if errors.Is(err, lock.ErrLockBusy) {
		return appErrors.Clone(appErrors.ErrGenerationConflict, "an allocation run is in progress for this exam date")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire allocation lock")
}
