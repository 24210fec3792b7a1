package store

import (
	"context"
	"testing"
	"time"
)

func TestCursorsAndActions(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	ctx := context.Background()

	v, err := db.LoadCursor(ctx, "search:since_id")
	if err != nil || v != "" { t.Fatalf("expected empty cursor, got %q %v", v, err) }
	if err := db.SaveCursor(ctx, "search:since_id", "123"); err != nil { t.Fatal(err) }
	if err := db.SaveCursor(ctx, "search:since_id", "456"); err != nil { t.Fatal(err) }
	v, err = db.LoadCursor(ctx, "search:since_id")
	if err != nil || v != "456" { t.Fatalf("cursor mismatch: %v %s", err, v) }

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := db.PutAction(ctx, Action{TaskID: "t1", TS: now, Kind: "repost", Handle: "alice", TweetID: "1", OK: true}); err != nil { t.Fatal(err) }
	if err := db.PutAction(ctx, Action{TaskID: "t2", TS: now.Add(time.Minute), Kind: "repost", Handle: "bob", TweetID: "2", OK: false, Detail: "rate limited"}); err != nil { t.Fatal(err) }
	if err := db.PutAction(ctx, Action{TaskID: "t3", TS: now.Add(2 * time.Minute), Kind: "like", Handle: "carol", TweetID: "3", OK: true}); err != nil { t.Fatal(err) }

	n, err := db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "repost")
	if err != nil || n != 1 { t.Fatalf("repost count mismatch: %v %d", err, n) }
	n, err = db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "")
	if err != nil || n != 2 { t.Fatalf("total count mismatch: %v %d", err, n) }

	all, err := db.LoadActionsRange(ctx, now, now.Add(time.Hour))
	if err != nil { t.Fatal(err) }
	if len(all) != 3 { t.Fatalf("expected 3 actions, got %d", len(all)) }
	if all[1].OK || all[1].Detail != "rate limited" || all[1].Handle != "bob" {
		t.Fatalf("unexpected failed action: %+v", all[1])
	}
	if !all[0].TS.Equal(now) { t.Fatalf("timestamp mismatch: %v", all[0].TS) }
}
