package ipfs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/common/httpx"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

const testCID = "QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn"

func newClient(url string) *Client {
	return New(url+"/", httpx.New(zerolog.Nop(), 0, 5*time.Second))
}

func TestUpload(t *testing.T) {
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v0/add", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("stream-channels"))
		assert.Equal(t, "false", r.URL.Query().Get("progress"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "edit.bin", hdr.Filename)
		gotFile, _ = io.ReadAll(f)

		json.NewEncoder(w).Encode(map[string]string{"Name": "edit.bin", "Hash": testCID, "Size": "12"})
	}))
	defer srv.Close()

	uri, err := newClient(srv.URL).Upload(context.Background(), "edit.bin", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "ipfs://"+testCID, uri)
	assert.Equal(t, "hello world", string(gotFile))

	c, err := ParseURI(uri)
	require.NoError(t, err)
	assert.Equal(t, testCID, c.String())
}

func TestUploadErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		}, "quota exceeded"},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}, "decode response"},
		{"bad cid", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Hash":"not-a-cid"}`))
		}, "not-a-cid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := newClient(srv.URL).Upload(context.Background(), "edit.json", []byte("{}"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrRemote))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestPublishEdit(t *testing.T) {
	var uploaded graph.Edit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.NoError(t, json.NewDecoder(f).Decode(&uploaded))
		w.Write([]byte(`{"Hash":"` + testCID + `"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	id := graph.GenerateID()
	edit := &graph.Edit{Name: "Deeds", Author: "0xabc", Ops: []graph.Op{graph.SetName(id, "Deed at 1 Main St")}}

	uri, err := c.PublishEdit(context.Background(), edit)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://"+testCID, uri)
	assert.Equal(t, "Deeds", uploaded.Name)
	require.Len(t, uploaded.Ops, 1)
	assert.Equal(t, id, uploaded.Ops[0].Triple.Entity)

	_, err = c.PublishEdit(context.Background(), &graph.Edit{Name: "empty", Author: "0xabc"})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestParseURI(t *testing.T) {
	_, err := ParseURI(testCID)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	_, err = ParseURI("ipfs://zzz")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
