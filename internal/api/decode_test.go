package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantIDs   []string
		wantPaged bool
		wantPages int
		wantTotal int
	}{
		{
			name:      "spring page",
			body:      `{"content":[{"id":"a"},{"id":"b"}],"number":1,"totalPages":4,"totalElements":35,"size":10}`,
			wantIDs:   []string{"a", "b"},
			wantPaged: true,
			wantPages: 4,
			wantTotal: 35,
		},
		{
			name:      "bare array",
			body:      `[{"id":"a"}]`,
			wantIDs:   []string{"a"},
			wantPages: 1,
			wantTotal: 1,
		},
		{
			name:      "wrapped array",
			body:      `{"success":true,"message":"ok","data":[{"id":"x"},{"id":"y"}]}`,
			wantIDs:   []string{"x", "y"},
			wantPages: 1,
			wantTotal: 2,
		},
		{
			name:      "wrapped page",
			body:      `{"data":{"content":[{"id":"z"}],"number":0,"totalPages":1,"totalElements":1,"size":10}}`,
			wantIDs:   []string{"z"},
			wantPaged: true,
			wantPages: 1,
			wantTotal: 1,
		},
		{
			name:      "empty page",
			body:      `{"content":[],"number":0,"totalPages":0,"totalElements":0,"size":10}`,
			wantIDs:   []string{},
			wantPaged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodeList[item]([]byte(tt.body))
			require.NoError(t, err)

			ids := make([]string, 0, len(page.Items))
			for _, it := range page.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantPaged, page.Paged)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantTotal, page.TotalElements)
		})
	}
}

func TestDecodeList_UnwrapsOnlyOnce(t *testing.T) {
	_, err := decodeList[item]([]byte(`{"data":{"data":[{"id":"deep"}]}}`))
	assert.ErrorIs(t, err, errUnknownShape)
}

func TestDecodeList_UnknownShape(t *testing.T) {
	_, err := decodeList[item]([]byte(`{"items":[]}`))
	assert.ErrorIs(t, err, errUnknownShape)
}

func TestDecodeObject(t *testing.T) {
	var got item
	require.NoError(t, decodeObject([]byte(`{"success":true,"data":{"id":"wrapped"}}`), &got))
	assert.Equal(t, "wrapped", got.ID)

	require.NoError(t, decodeObject([]byte(`{"id":"plain"}`), &got))
	assert.Equal(t, "plain", got.ID)
}
