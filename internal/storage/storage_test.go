package storage_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Totarae/openelex/internal/model"
	"github.com/Totarae/openelex/internal/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func doc(key, jurisdiction, body string) *model.Document {
	return &model.Document{
		Key:          key,
		Jurisdiction: jurisdiction,
		URL:          "https://elections.maryland.gov/" + key,
		Body:         []byte(body),
		FetchedAt:    time.Date(2012, 11, 7, 0, 0, 0, 0, time.UTC),
	}
}

// Тест сохранения и получения документа из памяти
func TestFileStore_SaveAndGet(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "docs.json"), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, doc("k1", "Kent", "a,b\n")))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "Kent", got.Jurisdiction)
	assert.Equal(t, "a,b\n", string(got.Body))

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

// Тест загрузки документов из файла при старте
func TestFileStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	ctx := context.Background()

	first, err := storage.NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, doc("k1", "Baltimore_City", "old")))
	require.NoError(t, first.Save(ctx, doc("k2", "Baltimore", "county")))
	require.NoError(t, first.Save(ctx, doc("k1", "Baltimore_City", "new")))

	second, err := storage.NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	got, err := second.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got.Body))

	city, err := second.List(ctx, "Baltimore_City")
	require.NoError(t, err)
	assert.Len(t, city, 1)

	county, err := second.List(ctx, "Baltimore")
	require.NoError(t, err)
	require.Len(t, county, 1)
	assert.Equal(t, "k2", county[0].Key)
}

func TestFileStore_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n{\"key\":\"k9\",\"jurisdiction\":\"Cecil\"}\n"), 0644))

	store, err := storage.NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "k9")
	require.NoError(t, err)
	assert.Equal(t, "Cecil", got.Jurisdiction)
}

func TestFileStore_InMemory(t *testing.T) {
	store, err := storage.NewFileStore("", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), doc("k1", "Kent", "x")))
	assert.Error(t, store.Save(context.Background(), &model.Document{}))
}

func TestFileStore_GetReturnsCopy(t *testing.T) {
	store, err := storage.NewFileStore("", zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, doc("k1", "Kent", "x")))

	got, _ := store.Get(ctx, "k1")
	got.Jurisdiction = "Fairfax"

	again, _ := store.Get(ctx, "k1")
	assert.Equal(t, "Kent", again.Jurisdiction)
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	headErr error
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = body
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func sha(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func newArchive(t *testing.T) (*storage.S3Archive, *storage.FileStore, *fakeS3) {
	t.Helper()
	mem, err := storage.NewFileStore("", zap.NewNop())
	require.NoError(t, err)
	client := &fakeS3{objects: make(map[string][]byte)}
	return storage.NewS3Archive(mem, client, "md-results", "md/", zap.NewNop()), mem, client
}

func TestS3Archive(t *testing.T) {
	archive, _, client := newArchive(t)
	ctx := context.Background()

	d := doc("abc", "St._Marys", "County,Total Votes\n")
	key := "md/St._Marys/" + sha("County,Total Votes\n") + ".csv"
	assert.Equal(t, key, archive.ObjectKey(d))

	require.NoError(t, archive.Save(ctx, d))
	require.NoError(t, archive.Save(ctx, d))
	assert.Equal(t, 1, client.puts)
	assert.Equal(t, "County,Total Votes\n", string(client.objects[key]))

	got, err := archive.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "St._Marys", got.Jurisdiction)
}

func TestS3Archive_RevisedBody(t *testing.T) {
	archive, mem, client := newArchive(t)
	ctx := context.Background()

	v1 := doc("kent-2012", "Kent", "Total Votes\n10\n")
	v1.Checksum = sha("Total Votes\n10\n")
	v2 := doc("kent-2012", "Kent", "Total Votes\n12\n")
	v2.Checksum = sha("Total Votes\n12\n")

	require.NoError(t, archive.Save(ctx, v1))
	require.NoError(t, archive.Save(ctx, v2))

	assert.Equal(t, 2, client.puts)
	assert.Equal(t, "Total Votes\n10\n", string(client.objects[archive.ObjectKey(v1)]))
	assert.Equal(t, "Total Votes\n12\n", string(client.objects[archive.ObjectKey(v2)]))

	// метаданные указывают на объект с актуальным телом
	latest, err := mem.Get(ctx, "kent-2012")
	require.NoError(t, err)
	assert.Equal(t, "Total Votes\n12\n", string(client.objects[archive.ObjectKey(latest)]))
}

func TestS3Archive_HeadError(t *testing.T) {
	archive, mem, client := newArchive(t)
	client.headErr = errors.New("AccessDenied")
	ctx := context.Background()

	err := archive.Save(ctx, doc("k1", "Talbot", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
	assert.Zero(t, client.puts)

	_, err = mem.Get(ctx, "k1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
