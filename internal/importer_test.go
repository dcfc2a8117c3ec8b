package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedExtractor returns canned results.
type fixedExtractor struct {
	detected []DetectedSubscription
	err      error
	calls    int
}

func (f *fixedExtractor) DetectSubscriptions(context.Context, string) ([]DetectedSubscription, error) {
	f.calls++
	return f.detected, f.err
}

func (f *fixedExtractor) CancellationText(context.Context, string) string {
	return FallbackCancellationText
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("imp-%d", n)
	}
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)
	require.NoError(t, store.Add(ctx, record("existing", "Existing")))

	detected, err := ParseDetected(twoDetected)
	require.NoError(t, err)
	im := &Importer{Extractor: &fixedExtractor{detected: detected}, Store: store, NewID: sequentialIDs()}

	added, err := im.Import(ctx, "  statement text  ")
	require.NoError(t, err)

	assert.Equal(t, []string{"imp-1", "imp-2"}, ids(added))
	assert.Equal(t, []string{"existing", "imp-1", "imp-2"}, ids(store.Subscriptions()))
	assert.Equal(t, []string{"existing", "imp-1", "imp-2"}, ids(reload(t, storage).Subscriptions()))
}

func TestImporter_EmptyInput(t *testing.T) {
	store, _ := newTestStore(t)
	ex := &fixedExtractor{}
	im := &Importer{Extractor: ex, Store: store}

	_, err := im.Import(context.Background(), " \n\t ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, ex.calls, "blank input never reaches the extractor")
}

func TestImporter_ExtractionFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)
	require.NoError(t, store.Add(ctx, record("existing", "Existing")))
	before := store.Subscriptions()

	gen := &stubGenerator{text: `[{"name": "Broken"`}
	im := &Importer{Extractor: newStubExtractor(gen), Store: store}

	added, err := im.Import(ctx, "some statement")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Nil(t, added)
	assert.Equal(t, before, store.Subscriptions())
	assert.Equal(t, ids(before), ids(reload(t, storage).Subscriptions()))
}

func TestImporter_NothingDetected(t *testing.T) {
	store, storage := newTestStore(t)
	im := &Importer{Extractor: &fixedExtractor{}, Store: store}

	added, err := im.Import(context.Background(), "no subscriptions in here")
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Empty(t, storage.Keys())
}

func TestImporter_WriteFailureKeepsRecords(t *testing.T) {
	store, storage := newTestStore(t)
	storage.WriteErr = errors.New("disk full")

	detected, err := ParseDetected(twoDetected)
	require.NoError(t, err)
	im := &Importer{Store: store, NewID: sequentialIDs()}

	added, err := im.ImportDetected(context.Background(), detected)
	assert.True(t, IsStorageWriteError(err))
	assert.Len(t, added, 2)
	assert.Len(t, store.Subscriptions(), 2)
}

func TestImporter_DefaultIDsAreUnique(t *testing.T) {
	store, _ := newTestStore(t)
	detected, err := ParseDetected(twoDetected)
	require.NoError(t, err)

	added, err := (&Importer{Store: store}).ImportDetected(context.Background(), detected)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotEqual(t, added[0].ID, added[1].ID)
	assert.Len(t, added[0].ID, 36)
}
