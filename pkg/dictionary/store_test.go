package dictionary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, *logger.TestLogger) {
	t.Helper()
	log := logger.NewTestLogger()
	return NewStore(filepath.Join(t.TempDir(), "data"), log), log
}

func TestSaveMergeKeepsKeys(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(FromEntries(Entry{"a", "u1"}), "L")
	require.NoError(t, err)
	path, err := store.Save(FromEntries(Entry{"b", "u2"}), "L")
	require.NoError(t, err)
	assert.Equal(t, store.Path("L"), path)

	dict, err := store.Load("L")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"a", "u1"}, {"b", "u2"}}, dict.Entries())
}

func TestSaveMergeOverwrites(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(FromEntries(Entry{"a", "u1"}, Entry{"b", "u1"}), "L")
	require.NoError(t, err)
	_, err = store.Save(FromEntries(Entry{"a", "u2"}), "L")
	require.NoError(t, err)

	dict, err := store.Load("L")
	require.NoError(t, err)
	// Overwritten keys keep their position
	assert.Equal(t, []Entry{{"a", "u2"}, {"b", "u1"}}, dict.Entries())
}

func TestSaveEmptyIsNoop(t *testing.T) {
	store, log := newTestStore(t)

	path, err := store.Save(New(), "L")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = store.Save(nil, "L")
	require.NoError(t, err)
	assert.Empty(t, path)

	assert.True(t, log.HasMessage("nothing to save"))
	_, err = os.Stat(store.Path("L"))
	assert.True(t, os.IsNotExist(err))
}

func TestSavePreservesFileOrder(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path("L")), 0755))
	require.NoError(t, os.WriteFile(store.Path("L"), []byte(`{"z":"1","m":"2","a":"3"}`), 0644))

	_, err := store.Save(FromEntries(Entry{"b", "4"}), "L")
	require.NoError(t, err)

	dict, err := store.Load("L")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "m", "a", "b"}, dict.Keys())

	// Still a flat JSON object on disk
	data, err := os.ReadFile(store.Path("L"))
	require.NoError(t, err)
	var flat map[string]string
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, map[string]string{"z": "1", "m": "2", "a": "3", "b": "4"}, flat)
}

func TestSaveMalformedLeavesFile(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path("L")), 0755))
	require.NoError(t, os.WriteFile(store.Path("L"), []byte(`{"a":`), 0644))

	path, err := store.Save(FromEntries(Entry{"b", "u"}), "L")
	assert.Empty(t, path)
	assert.True(t, errs.Is(err, errs.ErrorTypeMalformed))

	data, err := os.ReadFile(store.Path("L"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":`, string(data))
}

func TestLoadMissing(t *testing.T) {
	store, log := newTestStore(t)

	dict, err := store.Load("does-not-exist")
	assert.Nil(t, dict)
	assert.True(t, errs.Is(err, errs.ErrorTypeNotFound))
	assert.True(t, log.HasMessage("file does not exist"))
}

func TestLoadFileMalformed(t *testing.T) {
	store, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

	dict, err := store.LoadFile(path)
	assert.Nil(t, dict)
	assert.True(t, errs.Is(err, errs.ErrorTypeMalformed))
}

func TestConcurrentSaves(t *testing.T) {
	store, _ := newTestStore(t)

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.Save(FromEntries(Entry{id, "u-" + id}), "L")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	dict, err := store.Load("L")
	require.NoError(t, err)
	assert.Equal(t, len(ids), dict.Len())
	for _, id := range ids {
		url, ok := dict.Get(id)
		assert.True(t, ok)
		assert.Equal(t, "u-"+id, url)
	}
}

func TestDictionaryJSONRoundTripOrder(t *testing.T) {
	dict := FromEntries(Entry{"3", "c"}, Entry{"1", "a"}, Entry{"2", "b"})

	data, err := json.Marshal(dict)
	require.NoError(t, err)
	assert.Equal(t, `{"3":"c","1":"a","2":"b"}`, string(data))

	decoded := New()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"3", "1", "2"}, decoded.Keys())
}

func TestSaveWritesURLsUnescaped(t *testing.T) {
	store, _ := newTestStore(t)
	url := "https://images.unsplash.com/photo-1?a=1&ixid=Q<x>"

	path, err := store.Save(FromEntries(Entry{"Q", url}, Entry{"café", "https://x/é?ixid=café"}), "cat")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"Q\": \"https://images.unsplash.com/photo-1?a=1&ixid=Q<x>\",\n  \"café\": \"https://x/é?ixid=café\"\n}\n", string(data))
	assert.NotContains(t, string(data), `\u0026`)

	loaded, err := store.Load("cat")
	require.NoError(t, err)
	got, ok := loaded.Get("Q")
	require.True(t, ok)
	assert.Equal(t, url, got)
	assert.Equal(t, []string{"Q", "café"}, loaded.Keys())
}
