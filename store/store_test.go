package store_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/moviereview/internal/keys"
	"github.com/jacentio/moviereview/review"
	"github.com/jacentio/moviereview/store"
)

var alice = review.Author{0xa1}

func newTestReviews(t *testing.T) (*review.Store, *store.FakeAPI, store.Config) {
	t.Helper()
	fake := store.NewFakeAPI()
	ledger := store.New(fake, store.DefaultConfig())
	cfg := review.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return review.New(ledger, cfg), fake, ledger.Config()
}

func reservedAttr(t *testing.T, fake *store.FakeAPI, cfg store.Config, author review.Author, attr string) string {
	t.Helper()
	item := fake.Item(cfg.AccountTable, keys.AccountKey(author[:]))
	if item == nil {
		t.Fatalf("expected account item for %s", author)
	}
	n, ok := item[attr].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("expected number attribute %q, got %T", attr, item[attr])
	}
	return n.Value
}

func TestDefaultConfig(t *testing.T) {
	cfg := store.DefaultConfig()

	if cfg.RecordTable != "moviereview_records" {
		t.Errorf("expected RecordTable 'moviereview_records', got %q", cfg.RecordTable)
	}
	if cfg.AccountTable != "moviereview_accounts" {
		t.Errorf("expected AccountTable 'moviereview_accounts', got %q", cfg.AccountTable)
	}
}

func TestNewStore_BlankConfig(t *testing.T) {
	s := store.New(nil, store.Config{})
	if s.Config() != store.DefaultConfig() {
		t.Errorf("expected blank config to fall back to defaults, got %+v", s.Config())
	}
}

func TestCreate_WritesRecordAndAccount(t *testing.T) {
	ctx := context.Background()
	reviews, fake, cfg := newTestReviews(t)

	if _, err := reviews.Create(ctx, alice, "Dune", "Great sci-fi", 5); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	item := fake.Item(cfg.RecordTable, string(review.KeyFor("Dune", alice)))
	if item == nil {
		t.Fatal("expected record item")
	}
	if v, ok := item["title"].(*types.AttributeValueMemberS); !ok || v.Value != "Dune" {
		t.Errorf("expected title 'Dune', got %v", item["title"])
	}
	if v, ok := item["author"].(*types.AttributeValueMemberS); !ok || v.Value != alice.String() {
		t.Errorf("expected author %s, got %v", alice, item["author"])
	}
	if v, ok := item["version"].(*types.AttributeValueMemberN); !ok || v.Value != "1" {
		t.Errorf("expected version 1, got %v", item["version"])
	}
	if _, ok := item["data"].(*types.AttributeValueMemberB); !ok {
		t.Errorf("expected binary data, got %T", item["data"])
	}

	if got := reservedAttr(t, fake, cfg, alice, "reserved"); got != "119" {
		t.Errorf("expected 119 reserved, got %s", got)
	}
	if got := reservedAttr(t, fake, cfg, alice, "records"); got != "1" {
		t.Errorf("expected 1 record, got %s", got)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	reviews, fake, cfg := newTestReviews(t)

	_, _ = reviews.Create(ctx, alice, "Dune", "Great sci-fi", 5)
	_, err := reviews.Create(ctx, alice, "Dune", "Again", 4)
	if !errors.Is(err, review.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Cancelled transaction must not touch the account
	if got := reservedAttr(t, fake, cfg, alice, "reserved"); got != "119" {
		t.Errorf("expected 119 reserved, got %s", got)
	}
	got, _ := reviews.Get(ctx, alice, "Dune")
	if got.Description != "Great sci-fi" {
		t.Errorf("expected original description, got %q", got.Description)
	}
}

func TestCreate_ValidationSkipsBackend(t *testing.T) {
	reviews, fake, _ := newTestReviews(t)

	_, err := reviews.Create(context.Background(), alice, strings.Repeat("t", 21), "ok", 3)
	if !errors.Is(err, review.ErrTitleTooLong) {
		t.Fatalf("expected ErrTitleTooLong, got %v", err)
	}
	if fake.TransactCalls != 0 {
		t.Errorf("expected no transactions, got %d", fake.TransactCalls)
	}
}

func TestUpdate_Lifecycle(t *testing.T) {
	ctx := context.Background()
	reviews, fake, cfg := newTestReviews(t)

	_, _ = reviews.Create(ctx, alice, "Dune", "Great sci-fi", 5)

	updated, err := reviews.Update(ctx, alice, "Dune", "Great sci-fi epic", 4)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Description != "Great sci-fi epic" || updated.Rating != 4 || updated.Title != "Dune" {
		t.Errorf("unexpected update result %+v", updated)
	}

	got, err := reviews.Get(ctx, alice, "Dune")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if *got != *updated {
		t.Errorf("expected %+v, got %+v", updated, got)
	}

	item := fake.Item(cfg.RecordTable, string(review.KeyFor("Dune", alice)))
	if v := item["version"].(*types.AttributeValueMemberN); v.Value != "2" {
		t.Errorf("expected version 2, got %s", v.Value)
	}

	want := review.ResizedSpace("Great sci-fi epic")
	reserved, _ := reviews.Reserved(ctx, alice)
	if reserved != want {
		t.Errorf("expected %d reserved, got %d", want, reserved)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	reviews, fake, cfg := newTestReviews(t)

	_, err := reviews.Update(context.Background(), alice, "Dune", "new", 4)
	if !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if fake.Len(cfg.RecordTable) != 0 {
		t.Errorf("expected no records, got %d", fake.Len(cfg.RecordTable))
	}
}

func TestUpdate_ConcurrentModification(t *testing.T) {
	ctx := context.Background()
	reviews, fake, cfg := newTestReviews(t)

	_, _ = reviews.Create(ctx, alice, "Dune", "Great sci-fi", 5)

	// Another writer bumps the version between the read and the transaction
	pk := string(review.KeyFor("Dune", alice))
	fake.BeforeTransact = func(f *store.FakeAPI) {
		f.SetAttr(cfg.RecordTable, pk, "version", &types.AttributeValueMemberN{Value: "7"})
	}

	_, err := reviews.Update(ctx, alice, "Dune", "lost", 1)
	if !errors.Is(err, review.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestDelete_RefundsReservation(t *testing.T) {
	ctx := context.Background()
	reviews, fake, cfg := newTestReviews(t)

	_, _ = reviews.Create(ctx, alice, "Dune", "Great sci-fi", 5)
	_, _ = reviews.Create(ctx, alice, "Arrival", "Quiet", 4)

	if err := reviews.Delete(ctx, alice, "Dune"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := reviews.Get(ctx, alice, "Dune"); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if got := reservedAttr(t, fake, cfg, alice, "reserved"); got != "119" {
		t.Errorf("expected 119 reserved, got %s", got)
	}
	if got := reservedAttr(t, fake, cfg, alice, "records"); got != "1" {
		t.Errorf("expected 1 record, got %s", got)
	}

	if err := reviews.Delete(ctx, alice, "Dune"); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReserved_NoAccount(t *testing.T) {
	reviews, _, _ := newTestReviews(t)

	reserved, err := reviews.Reserved(context.Background(), alice)
	if err != nil {
		t.Fatalf("Reserved() failed: %v", err)
	}
	if reserved != 0 {
		t.Errorf("expected 0 reserved, got %d", reserved)
	}
}
