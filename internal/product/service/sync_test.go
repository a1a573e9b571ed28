package service

import (
	"context"
	"errors"
	"testing"

	"github.com/motodesk/motodesk/internal/product/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFeed struct {
	products []domain.Product
	err      error
}

func (f *fakeFeed) FetchProducts(context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

type fakeStore struct {
	replaced [][]domain.Product
	err      error
}

func (f *fakeStore) ByNumbers(context.Context, []string) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeStore) ReplaceAll(_ context.Context, products []domain.Product) error {
	f.replaced = append(f.replaced, products)
	return f.err
}

func TestSyncOnceReplacesCatalog(t *testing.T) {
	feed := &fakeFeed{products: []domain.Product{
		{Number: "FLT-200", Name: "Oil filter"},
		{Number: "SPK-4", Name: "Spark plug"},
	}}
	store := &fakeStore{}
	s := &Syncer{feed: feed, store: store, log: zap.NewNop()}

	require.NoError(t, s.SyncOnce(context.Background()))
	require.Len(t, store.replaced, 1)
	require.Len(t, store.replaced[0], 2)
}

func TestSyncOnceFeedFailureLeavesStoreUntouched(t *testing.T) {
	feed := &fakeFeed{err: errors.New("distributor down")}
	store := &fakeStore{}
	s := &Syncer{feed: feed, store: store, log: zap.NewNop()}

	require.Error(t, s.SyncOnce(context.Background()))
	require.Empty(t, store.replaced)
}

func TestSyncOnceStoreFailurePropagates(t *testing.T) {
	feed := &fakeFeed{products: []domain.Product{{Number: "FLT-200"}}}
	store := &fakeStore{err: errors.New("disk full")}
	s := &Syncer{feed: feed, store: store, log: zap.NewNop()}

	require.Error(t, s.SyncOnce(context.Background()))
}
