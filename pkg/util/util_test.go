package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrorf(t *testing.T) {
	sentinel := errors.New("no route")
	err := WrapErrorf(sentinel, ErrNotFound, "no route from %d to %d", 1, 2)

	assert.Equal(t, "no route from 1 to 2", err.Error())
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, ErrNotFound, ErrorCode(err))
	assert.Equal(t, ErrInternalServerError, ErrorCode(errors.New("plain")))
}

func TestParseIndexList(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    []uint32
		wantErr bool
	}{
		{name: "empty", in: "", want: []uint32{}},
		{name: "single", in: "7", want: []uint32{7}},
		{name: "many with spaces", in: "1, 2,3", want: []uint32{1, 2, 3}},
		{name: "negative", in: "1,-2", wantErr: true},
		{name: "garbage", in: "a", wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndexList(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
